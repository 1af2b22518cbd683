// Package format renders human-readable document numbers from templates such
// as "WO-{YYYY}{MM}{DD}-{SEQ4}".
package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DefaultWorkOrderNumberTemplate = "WO-{YYYY}{MM}{DD}-{SEQ4}"

var (
	ErrEmptyTemplate   = errors.New("empty_number_template")
	ErrInvalidSequence = errors.New("invalid_number_sequence")
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

// Number expands template for a document created at createdAt with the given
// sequence. It has no side effects.
//
// Supported tokens: {YYYY} {YY} {MM} {DD} {SEQ} and {SEQn}, where n is the
// zero-padded width.
func Number(template string, createdAt time.Time, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", ErrEmptyTemplate
	}
	if seq <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidSequence, seq)
	}

	out := strings.NewReplacer(
		"{YYYY}", createdAt.Format("2006"),
		"{YY}", createdAt.Format("06"),
		"{MM}", createdAt.Format("01"),
		"{DD}", createdAt.Format("02"),
		"{SEQ}", strconv.FormatInt(seq, 10),
	).Replace(template)

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		width, err := strconv.Atoi(seqPadRe.FindStringSubmatch(m)[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in number template: %s", out)
	}
	return out, nil
}
