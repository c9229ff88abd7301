package s3backend

import (
	"errors"
	"testing"
)

func TestKeyWithPrefix(t *testing.T) {
	b := &S3{bucket: "artifacts", prefix: "releases"}
	if got := b.key("demo/1.0.0/artifact.sane"); got != "releases/demo/1.0.0/artifact.sane" {
		t.Errorf("key = %s", got)
	}
}

func TestKeyWithoutPrefix(t *testing.T) {
	b := &S3{bucket: "artifacts"}
	if got := b.key("demo/1.0.0/artifact.sane"); got != "demo/1.0.0/artifact.sane" {
		t.Errorf("key = %s", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(errors.New("NoSuchKey: the key does not exist")) {
		t.Error("expected NoSuchKey to be recognized as not found")
	}
	if isNotFound(errors.New("AccessDenied")) {
		t.Error("AccessDenied should not be treated as not found")
	}
}
