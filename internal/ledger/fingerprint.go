package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	dErrors "vault/pkg/domain-errors"
)

// Fingerprint derives the deterministic content hash of a document payload:
// SHA-256 over the file bytes followed by a fixed-order, length-prefixed
// serialization of the core metadata. Same payload always yields the same
// fingerprint, across calls and process restarts.
//
// Errors: CodeInvalidPayload when the file bytes are empty or required
// metadata is missing.
func Fingerprint(p Payload) (string, error) {
	if len(p.FileBytes) == 0 {
		return "", dErrors.New(dErrors.CodeInvalidPayload, "payload file bytes are empty")
	}
	if !p.Type.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidPayload, "payload document type is missing or unknown")
	}
	if p.DocumentNumber == "" {
		return "", dErrors.New(dErrors.CodeInvalidPayload, "payload document number is empty")
	}
	if p.AuthorityID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidPayload, "payload authority id is missing")
	}
	if p.IssueDate.IsZero() {
		return "", dErrors.New(dErrors.CodeInvalidPayload, "payload issue date is missing")
	}

	h := sha256.New()
	writeField(h.Write, p.FileBytes)
	writeField(h.Write, []byte(p.Type))
	writeField(h.Write, []byte(p.DocumentNumber))
	writeField(h.Write, []byte(p.AuthorityID.String()))
	writeField(h.Write, []byte(p.IssueDate.UTC().Format(time.RFC3339Nano)))
	if p.ExpiryDate != nil {
		writeField(h.Write, []byte(p.ExpiryDate.UTC().Format(time.RFC3339Nano)))
	} else {
		writeField(h.Write, nil)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeField length-prefixes each field so adjacent fields can never collide
// (e.g. number "12"+date "3..." vs number "123"+date "...").
func writeField(write func([]byte) (int, error), field []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(field)))
	_, _ = write(lenBuf[:])
	_, _ = write(field)
}
