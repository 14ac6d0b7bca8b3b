package services

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/go-qa-backend/internal/apperr"
	"github.com/tbourn/go-qa-backend/internal/domain"
)

// checkTitle rejects a title that is blank after trimming. The title itself
// is stored exactly as submitted.
func checkTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.New(apperr.MalformedBody, "title must not be blank")
	}
	return nil
}

// dedupeTags drops repeated tags, keeping the first spelling seen. Tags that
// differ only in Unicode composition (NFC vs NFD) are the same label. Nothing
// else is rewritten, and a nil input stays nil.
func dedupeTags(in domain.Tags) domain.Tags {
	if in == nil {
		return nil
	}
	out := make(domain.Tags, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		k := norm.NFC.String(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}
