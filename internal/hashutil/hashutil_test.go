package hashutil

import (
	"strings"
	"testing"

	"github.com/binrep/binrep/internal/model"
)

func TestSumSHA256(t *testing.T) {
	got, err := Sum(model.SHA256, strings.NewReader("Hello\n"))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	want := "66a045b452102c59d840ec097d59d9467e13a3f34f6494e539ffd32c1bb35f18"
	if got != want {
		t.Errorf("Sum = %s, want %s", got, want)
	}
}

func TestVerifyMismatch(t *testing.T) {
	err := Verify(model.SHA256, strings.NewReader("Hello\n"), "0000000000000000000000000000000000000000000000000000000000000", "hello")
	if err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}

func TestVerifyMatch(t *testing.T) {
	want := "66a045b452102c59d840ec097d59d9467e13a3f34f6494e539ffd32c1bb35f18"
	if err := Verify(model.SHA256, strings.NewReader("Hello\n"), want, "hello"); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestTeeSum(t *testing.T) {
	src := strings.NewReader("Hello\n")
	tee, sum, err := TeeSum(model.SHA256, src)
	if err != nil {
		t.Fatalf("TeeSum: %v", err)
	}
	var sb strings.Builder
	buf := make([]byte, 4)
	for {
		n, rerr := tee.Read(buf)
		sb.Write(buf[:n])
		if rerr != nil {
			break
		}
	}
	got, err := sum()
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	want := "66a045b452102c59d840ec097d59d9467e13a3f34f6494e539ffd32c1bb35f18"
	if got != want {
		t.Errorf("sum = %s, want %s", got, want)
	}
	if sb.String() != "Hello\n" {
		t.Errorf("drained content = %q", sb.String())
	}
}

func TestNewUnknownMethod(t *testing.T) {
	if _, err := New(model.ChecksumMethod("MD5")); err == nil {
		t.Fatal("expected error for unknown method")
	}
}
