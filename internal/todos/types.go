package todos

import (
	"strings"
	"time"
)

// Todo is a single titled, completable item.
type Todo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Title     *string
	Completed *bool
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Completed == nil
}

// NormalizeTitle trims surrounding whitespace and rejects blank titles.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrInvalidTitle
	}
	return title, nil
}

// normalizePatch trims the patched title, if any, and rejects empty patches.
func normalizePatch(p Patch) (Patch, error) {
	if p.Empty() {
		return Patch{}, ErrEmptyPatch
	}
	if p.Title != nil {
		title, err := NormalizeTitle(*p.Title)
		if err != nil {
			return Patch{}, err
		}
		p.Title = &title
	}
	return p, nil
}

// SplitByCompletion returns the incomplete todos followed by the completed
// ones, keeping relative order inside each group.
func SplitByCompletion(items []Todo) []Todo {
	out := make([]Todo, 0, len(items))
	for _, t := range items {
		if !t.Completed {
			out = append(out, t)
		}
	}
	for _, t := range items {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}
