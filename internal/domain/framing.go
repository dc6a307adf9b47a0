package domain

import (
	"crypto/md5" // #nosec G501 - content fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	m "repolens.dev/pkg/repolens/internal/model"
)

// ContentDigest returns the lowercase hex MD5 of the decoded content.
// It is always computed over the original (pre-truncation) content so
// consumers can detect truncation by recomputing over what they got.
func ContentDigest(content string) string {
	sum := md5.Sum([]byte(content)) // #nosec G401

	return hex.EncodeToString(sum[:])
}

// FrameRecord writes one emission record in the Plus/Minus format:
//
//	++++++++++ <path> [TRUNCATED: <orig> lines] ++++++++++
//	<content>
//	---------- <path> [TRUNCATED:<orig>→<final>] <md5> <path> ----------
//
// The truncation annotations appear only when truncation occurred. The
// content always ends in exactly one newline; if the retained content
// lacks one, it is injected here (the digest input is unaffected).
// Sink errors are propagated and terminate the run.
func FrameRecord(w io.Writer, rec m.EmissionRecord) error {
	path := string(rec.RelPath)

	var start, end string

	if rec.Truncated {
		start = fmt.Sprintf("++++++++++ %s [TRUNCATED: %d lines] ++++++++++\n", path, rec.OriginalLines)
		end = fmt.Sprintf("---------- %s [TRUNCATED:%d→%d] %s %s ----------\n",
			path, rec.OriginalLines, rec.FinalLines, rec.MD5, path)
	} else {
		start = fmt.Sprintf("++++++++++ %s ++++++++++\n", path)
		end = fmt.Sprintf("---------- %s %s %s ----------\n", path, rec.MD5, path)
	}

	if _, err := io.WriteString(w, start); err != nil {
		return fmt.Errorf("write start marker: %w", err)
	}

	if _, err := io.WriteString(w, rec.Content); err != nil {
		return fmt.Errorf("write content: %w", err)
	}

	if !strings.HasSuffix(rec.Content, "\n") {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("write content terminator: %w", err)
		}
	}

	if _, err := io.WriteString(w, end); err != nil {
		return fmt.Errorf("write end marker: %w", err)
	}

	return nil
}
