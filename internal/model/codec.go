package model

import (
	"github.com/binrep/binrep/internal/binreperr"
	"github.com/binrep/binrep/internal/sane"
)

// EncodeManifest serializes a Manifest to SANE bytes.
func EncodeManifest(m Manifest) []byte {
	doc := sane.NewDocument()
	doc.Set("version", m.Version)

	files := make([]sane.Value, len(m.Files))
	for i, f := range m.Files {
		obj := sane.NewObject()
		obj.Set("name", f.Name)
		obj.Set("checksum", f.Checksum)
		obj.Set("checksum_method", string(f.ChecksumMethod))
		files[i] = obj
	}
	doc.Set("files", files)

	sig := sane.NewObject()
	sig.Set("key_id", m.Signature.KeyID)
	sig.Set("signature", m.Signature.Signature)
	sig.Set("signature_method", string(m.Signature.SignatureMethod))
	doc.Set("signature", sig)

	return sane.Encode(doc)
}

// DecodeManifest parses SANE bytes into a Manifest.
func DecodeManifest(data []byte) (Manifest, error) {
	doc, err := sane.Decode(data)
	if err != nil {
		return Manifest{}, err
	}

	version, ok := doc.GetString("version")
	if !ok {
		return Manifest{}, binreperr.Missing("version")
	}

	rawFiles, ok := doc.GetArray("files")
	if !ok {
		return Manifest{}, binreperr.Missing("files")
	}
	files := make([]FileEntry, len(rawFiles))
	for i, rv := range rawFiles {
		obj, ok := rv.(*sane.Object)
		if !ok {
			return Manifest{}, binreperr.TypeMismatch("files[]", "object")
		}
		name, ok := obj.GetString("name")
		if !ok {
			return Manifest{}, binreperr.Missing("files[].name")
		}
		checksum, ok := obj.GetString("checksum")
		if !ok {
			return Manifest{}, binreperr.Missing("files[].checksum")
		}
		method, ok := obj.GetString("checksum_method")
		if !ok {
			return Manifest{}, binreperr.Missing("files[].checksum_method")
		}
		files[i] = FileEntry{Name: name, Checksum: checksum, ChecksumMethod: ChecksumMethod(method)}
	}

	sigObj, ok := doc.GetObject("signature")
	if !ok {
		return Manifest{}, binreperr.Missing("signature")
	}
	keyID, ok := sigObj.GetString("key_id")
	if !ok {
		return Manifest{}, binreperr.Missing("signature.key_id")
	}
	sigValue, ok := sigObj.GetString("signature")
	if !ok {
		return Manifest{}, binreperr.Missing("signature.signature")
	}
	sigMethod, ok := sigObj.GetString("signature_method")
	if !ok {
		return Manifest{}, binreperr.Missing("signature.signature_method")
	}

	return Manifest{
		Version: version,
		Files:   files,
		Signature: Signature{
			KeyID:           keyID,
			Signature:       sigValue,
			SignatureMethod: SignatureMethod(sigMethod),
		},
	}, nil
}

// EncodeArtifactsIndex serializes an ArtifactsIndex to SANE bytes.
func EncodeArtifactsIndex(idx ArtifactsIndex) []byte {
	doc := sane.NewDocument()
	doc.Set("artifacts", stringsToValues(idx.Artifacts))
	return sane.Encode(doc)
}

// DecodeArtifactsIndex parses SANE bytes into an ArtifactsIndex.
func DecodeArtifactsIndex(data []byte) (ArtifactsIndex, error) {
	doc, err := sane.Decode(data)
	if err != nil {
		return ArtifactsIndex{}, err
	}
	arr, ok := doc.GetArray("artifacts")
	if !ok {
		return ArtifactsIndex{}, nil
	}
	names, err := valuesToStrings(arr, "artifacts[]")
	if err != nil {
		return ArtifactsIndex{}, err
	}
	return ArtifactsIndex{Artifacts: names}, nil
}

// EncodeVersionsIndex serializes a VersionsIndex to SANE bytes.
func EncodeVersionsIndex(idx VersionsIndex) []byte {
	doc := sane.NewDocument()
	doc.Set("versions", stringsToValues(idx.Versions))
	return sane.Encode(doc)
}

// DecodeVersionsIndex parses SANE bytes into a VersionsIndex. Entries that
// fail to parse as strings are dropped rather than failing the whole
// decode, mirroring the "ignore unparsable entries with a warning" rule for
// version lists; the caller logs the warning since this layer has no logger.
func DecodeVersionsIndex(data []byte) (VersionsIndex, []string, error) {
	doc, err := sane.Decode(data)
	if err != nil {
		return VersionsIndex{}, nil, err
	}
	arr, ok := doc.GetArray("versions")
	if !ok {
		return VersionsIndex{}, nil, nil
	}
	var versions []string
	var dropped []string
	for _, v := range arr {
		s, ok := v.(string)
		if !ok {
			dropped = append(dropped, "non-string version entry")
			continue
		}
		versions = append(versions, s)
	}
	return VersionsIndex{Versions: versions}, dropped, nil
}

// EncodeSyncState serializes a SyncState to SANE bytes.
func EncodeSyncState(s SyncState) []byte {
	doc := sane.NewDocument()
	doc.Set("version", s.Version)
	doc.Set("files", stringsToValues(s.Files))
	return sane.Encode(doc)
}

// DecodeSyncState parses SANE bytes into a SyncState.
func DecodeSyncState(data []byte) (SyncState, error) {
	doc, err := sane.Decode(data)
	if err != nil {
		return SyncState{}, err
	}
	version, ok := doc.GetString("version")
	if !ok {
		return SyncState{}, binreperr.Missing("version")
	}
	arr, _ := doc.GetArray("files")
	files, err := valuesToStrings(arr, "files[]")
	if err != nil {
		return SyncState{}, err
	}
	return SyncState{Version: version, Files: files}, nil
}

func stringsToValues(ss []string) []sane.Value {
	out := make([]sane.Value, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func valuesToStrings(vs []sane.Value, field string) ([]string, error) {
	if vs == nil {
		return nil, nil
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		s, ok := v.(string)
		if !ok {
			return nil, binreperr.TypeMismatch(field, "string")
		}
		out[i] = s
	}
	return out, nil
}
