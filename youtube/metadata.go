package youtube

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var ErrInvalidMetadata = errors.New("invalid video metadata")

const (
	maxTitleLength       = 100
	maxDescriptionBytes  = 5000
	maxTagsTotalLength   = 500
	DefaultCategoryID    = "22"
	DefaultPrivacyStatus = PrivacyPrivate
)

type PrivacyStatus string

const (
	PrivacyPublic   PrivacyStatus = "public"
	PrivacyPrivate  PrivacyStatus = "private"
	PrivacyUnlisted PrivacyStatus = "unlisted"
)

// Category is a YouTube video category offered by the upload form.
type Category struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Label renders the category the way the form lists it, e.g. "22 - People & Blogs".
func (c Category) Label() string {
	return c.ID + " - " + c.Title
}

var categories = []Category{
	{ID: "22", Title: "People & Blogs"},
	{ID: "23", Title: "Comedy"},
	{ID: "24", Title: "Entertainment"},
	{ID: "25", Title: "News & Politics"},
	{ID: "26", Title: "Howto & Style"},
	{ID: "27", Title: "Education"},
	{ID: "28", Title: "Science & Technology"},
	{ID: "29", Title: "Nonprofits & Activism"},
}

// Categories returns the assignable categories shown by the upload form.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategoryID accepts either a bare id ("27") or a form label ("27 - Education").
func ParseCategoryID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return DefaultCategoryID, nil
	}
	id, _, _ := strings.Cut(input, " - ")
	id = strings.TrimSpace(id)
	if _, err := strconv.Atoi(id); err != nil {
		return "", errors.Wrapf(ErrInvalidMetadata, "category %q is not numeric", input)
	}
	return id, nil
}

// ParsePrivacy maps form input onto a privacy status. Empty input is private.
func ParsePrivacy(input string) (PrivacyStatus, error) {
	switch p := PrivacyStatus(strings.ToLower(strings.TrimSpace(input))); p {
	case "":
		return DefaultPrivacyStatus, nil
	case PrivacyPublic, PrivacyPrivate, PrivacyUnlisted:
		return p, nil
	default:
		return "", errors.Wrapf(ErrInvalidMetadata, "unknown privacy status %q", input)
	}
}

// ParseTags splits a comma separated tag list, dropping blanks and duplicates.
func ParseTags(input string) []string {
	seen := map[string]struct{}{}
	tags := []string{}
	for _, tag := range strings.Split(input, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// VideoMetadata is the snippet and status sent with an upload.
type VideoMetadata struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	CategoryID  string        `json:"categoryId"`
	Privacy     PrivacyStatus `json:"privacyStatus"`
	Tags        []string      `json:"tags"`
	MadeForKids bool          `json:"madeForKids"`
}

// Validate applies the limits the Data API enforces on insert.
func (m VideoMetadata) Validate() error {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return errors.Wrap(ErrInvalidMetadata, "title is required")
	}
	if n := utf8.RuneCountInString(title); n > maxTitleLength {
		return errors.Wrapf(ErrInvalidMetadata, "title is %d characters, the limit is %d", n, maxTitleLength)
	}
	if len(m.Description) > maxDescriptionBytes {
		return errors.Wrapf(ErrInvalidMetadata, "description is %d bytes, the limit is %d", len(m.Description), maxDescriptionBytes)
	}
	if strings.ContainsAny(m.Title, "<>") || strings.ContainsAny(m.Description, "<>") {
		return errors.Wrap(ErrInvalidMetadata, "title and description cannot contain < or >")
	}
	if _, err := strconv.Atoi(m.CategoryID); err != nil {
		return errors.Wrapf(ErrInvalidMetadata, "category %q is not numeric", m.CategoryID)
	}
	switch m.Privacy {
	case PrivacyPublic, PrivacyPrivate, PrivacyUnlisted:
	default:
		return errors.Wrapf(ErrInvalidMetadata, "unknown privacy status %q", m.Privacy)
	}
	if n := tagsLength(m.Tags); n > maxTagsTotalLength {
		return errors.Wrapf(ErrInvalidMetadata, "tags total %d characters, the limit is %d", n, maxTagsTotalLength)
	}
	return nil
}

// tagsLength counts like YouTube does: tags with spaces are quoted and tags are comma separated.
func tagsLength(tags []string) int {
	total := 0
	for i, tag := range tags {
		if i > 0 {
			total++
		}
		total += utf8.RuneCountInString(tag)
		if strings.Contains(tag, " ") {
			total += 2
		}
	}
	return total
}

// WatchURL returns the public link of an uploaded video.
func WatchURL(videoID string) string {
	return fmt.Sprintf("https://youtu.be/%s", videoID)
}
