package sanitize

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/tree"
)

var (
	// DefaultMaxTextSize is 4KB per content string.
	DefaultMaxTextSize = 4096
	// EnvMaxTextSize is the environment variable to override the default
	EnvMaxTextSize = "CANOPY_MAX_TEXT_SIZE"
)

var (
	ErrTextTooLarge = errors.New("text exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("text contains invalid UTF-8 sequences")
)

// Text cleans client supplied content by enforcing a size limit,
// validating UTF-8, and stripping dangerous control characters.
// A limit <= 0 uses MaxTextSize().
func Text(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = MaxTextSize()
	}
	if len(input) > limit {
		// Reject rather than truncate so the stored tree is exactly what was sent.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTextTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Newline, tab and carriage return survive. ESC, NUL, BEL and friends
	// would poison logs and terminal previews.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// Patches sanitizes the text of every patch in place, including the content
// of nodes carried by children replacements.
func Patches(patches []domain.Patch, limit int) error {
	for i := range patches {
		p := &patches[i]
		if !p.ReplacesChildren() {
			clean, err := Text(p.Text, limit)
			if err != nil {
				return fmt.Errorf("patch %q: %w", p.ID, err)
			}
			p.Text = clean
			continue
		}
		for j := range p.Children {
			var err error
			tree.Walk(&p.Children[j], func(n *domain.Node, _ int) bool {
				if n.Content == nil || err != nil {
					return err == nil
				}
				var clean string
				if clean, err = Text(*n.Content, limit); err != nil {
					err = fmt.Errorf("patch %q node %q: %w", p.ID, n.ID, err)
					return false
				}
				n.SetContent(clean)
				return true
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

// MaxTextSize returns the limit from EnvMaxTextSize, or the default.
func MaxTextSize() int {
	if val := os.Getenv(EnvMaxTextSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxTextSize
}
