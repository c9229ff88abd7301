// Package config loads binrep's process configuration: which backend to
// talk to, which keys are available for signing and verification, the
// default publish parameters, and an optional Slack webhook. It is read
// once, synchronously, before any task is spawned.
package config

import (
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/binrep/binrep/internal/backend"
	"github.com/binrep/binrep/internal/binreperr"
	"github.com/binrep/binrep/internal/model"
	"github.com/binrep/binrep/internal/repository"
	"github.com/binrep/binrep/internal/sane"
	"github.com/binrep/binrep/internal/signing"
)

// Config is the fully decoded, validated process configuration.
type Config struct {
	Backend         backend.Config
	Keys            signing.KeyTable
	PublishDefaults repository.PublishParams
	SlackWebhookURL string
}

// SearchPaths returns the default config locations, most specific first:
// $XDG_CONFIG_HOME/binrep/config.sane, ~/.binrep/config.sane,
// /etc/binrep/config.sane.
func SearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "binrep", "config.sane"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".binrep", "config.sane"))
	}
	paths = append(paths, filepath.Join(string(filepath.Separator), "etc", "binrep", "config.sane"))
	return paths
}

// Find returns the first existing path among SearchPaths, or an error if
// none exist.
func Find() (string, error) {
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", binreperr.Config("no config file found in default search path", nil)
}

// Load reads and decodes the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, binreperr.Config("reading config file", err)
	}
	doc, err := sane.Decode(data)
	if err != nil {
		return Config{}, err
	}
	return fromDocument(doc)
}

func fromDocument(doc *sane.Document) (Config, error) {
	cfg := Config{Keys: signing.KeyTable{}}

	backendCfg, err := decodeBackend(doc)
	if err != nil {
		return Config{}, err
	}
	cfg.Backend = backendCfg

	if err := decodeHMACKeys(doc, cfg.Keys); err != nil {
		return Config{}, err
	}
	if err := decodeEd25519Keys(doc, cfg.Keys); err != nil {
		return Config{}, err
	}

	params, err := decodePublishParameters(doc, cfg.Keys)
	if err != nil {
		return Config{}, err
	}
	cfg.PublishDefaults = params

	if s, ok := doc.Section("slack"); ok {
		url, _ := s.GetString("webhook_url")
		cfg.SlackWebhookURL = url
	}

	return cfg, nil
}

func decodeBackend(doc *sane.Document) (backend.Config, error) {
	s, ok := doc.Section("backend")
	if !ok {
		return backend.Config{}, binreperr.Config("missing [backend] section", nil)
	}
	kindStr, ok := s.GetString("kind")
	if !ok {
		return backend.Config{}, binreperr.Config("[backend] missing kind", nil)
	}

	switch backend.Kind(kindStr) {
	case backend.KindFilesystem:
		root, ok := s.GetString("root_dir")
		if !ok {
			return backend.Config{}, binreperr.Config("[backend] filesystem requires root_dir", nil)
		}
		return backend.Config{Kind: backend.KindFilesystem, RootDir: root}, nil
	case backend.KindS3:
		bucket, _ := s.GetString("bucket")
		region, _ := s.GetString("region")
		if bucket == "" || region == "" {
			return backend.Config{}, binreperr.Config("[backend] s3 requires bucket and region", nil)
		}
		prefix, _ := s.GetString("prefix")
		profile, _ := s.GetString("profile")
		return backend.Config{Kind: backend.KindS3, Bucket: bucket, Region: region, Prefix: prefix, Profile: profile}, nil
	default:
		return backend.Config{}, binreperr.Config("[backend] unknown kind "+kindStr, nil)
	}
}

func decodeHMACKeys(doc *sane.Document, keys signing.KeyTable) error {
	s, ok := doc.Section("hmac_keys")
	if !ok {
		return nil
	}
	for _, keyID := range s.Keys() {
		b64, _ := s.GetString(keyID)
		key, err := signing.HMACKeyFromBase64(b64)
		if err != nil {
			return err
		}
		keys[keyID] = key
	}
	return nil
}

func decodeEd25519Keys(doc *sane.Document, keys signing.KeyTable) error {
	s, ok := doc.Section("ed25519_keys")
	if !ok {
		return nil
	}
	for _, keyID := range s.Keys() {
		entry, ok := s.GetObject(keyID)
		if !ok {
			return binreperr.Config("[ed25519_keys] "+keyID+" must be an inline object", nil)
		}
		if priv, ok := entry.GetString("private"); ok {
			der, err := base64.StdEncoding.DecodeString(priv)
			if err != nil {
				return binreperr.Config("[ed25519_keys] "+keyID+" invalid base64 private key", err)
			}
			key, err := signing.Ed25519PrivateKeyFromPKCS8(der)
			if err != nil {
				return err
			}
			keys[keyID] = key
			continue
		}
		if pub, ok := entry.GetString("public"); ok {
			raw, err := base64.StdEncoding.DecodeString(pub)
			if err != nil {
				return binreperr.Config("[ed25519_keys] "+keyID+" invalid base64 public key", err)
			}
			key, err := signing.Ed25519PublicKeyFromRaw(raw)
			if err != nil {
				return err
			}
			keys[keyID] = key
			continue
		}
		return binreperr.Config("[ed25519_keys] "+keyID+" needs a public or private field", nil)
	}
	return nil
}

func decodePublishParameters(doc *sane.Document, keys signing.KeyTable) (repository.PublishParams, error) {
	s, ok := doc.Section("publish_parameters")
	if !ok {
		return repository.PublishParams{}, nil
	}

	var params repository.PublishParams
	if v, ok := s.GetString("checksum_method"); ok {
		params.ChecksumMethod = model.ChecksumMethod(v)
		if !params.ChecksumMethod.Valid() {
			return repository.PublishParams{}, binreperr.Config("[publish_parameters] invalid checksum_method "+v, nil)
		}
	}
	if v, ok := s.GetString("signature_method"); ok {
		params.SignatureMethod = model.SignatureMethod(v)
		if !params.SignatureMethod.Valid() {
			return repository.PublishParams{}, binreperr.Config("[publish_parameters] invalid signature_method "+v, nil)
		}
	}
	if v, ok := s.GetString("key_id"); ok {
		params.KeyID = v
	}

	if params.KeyID != "" && params.SignatureMethod != "" {
		key, ok := keys[params.KeyID]
		if !ok {
			return repository.PublishParams{}, binreperr.Config("[publish_parameters] key_id "+params.KeyID+" not defined", nil)
		}
		if !key.CompatibleWith(params.SignatureMethod) {
			return repository.PublishParams{}, binreperr.Config("[publish_parameters] key_id "+params.KeyID+" incompatible with signature_method", nil)
		}
	}

	return params, nil
}
