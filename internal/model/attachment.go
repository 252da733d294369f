package model

import (
	"encoding/json"
	"regexp"
)

// Attachment is a file-valued field: either Empty or a single public URL.
// The record store expects "" for the empty case and [{"url": ...}] otherwise.
type Attachment struct {
	url string
}

// Empty is the attachment with no file.
var Empty = Attachment{}

// attachmentRef is the {url} wrapper the record store uses for files.
type attachmentRef struct {
	URL string `json:"url"`
}

var driveShareLink = regexp.MustCompile(`https://drive\.google\.com/file/d/([\w-]+)/view`)

// NewAttachment wraps url. Drive share links are rewritten to their direct
// view form; a blank url yields Empty.
func NewAttachment(url string) Attachment {
	if url == "" {
		return Empty
	}
	return Attachment{url: DirectDriveURL(url)}
}

// DirectDriveURL rewrites https://drive.google.com/file/d/<id>/view links to
// https://drive.google.com/uc?export=view&id=<id>. Other URLs are returned as-is.
func DirectDriveURL(url string) string {
	if m := driveShareLink.FindStringSubmatch(url); m != nil {
		return "https://drive.google.com/uc?export=view&id=" + m[1]
	}
	return url
}

// IsEmpty reports whether a has no file.
func (a Attachment) IsEmpty() bool { return a.url == "" }

// URL returns the attachment URL, or "" for Empty.
func (a Attachment) URL() string { return a.url }

// MarshalJSON encodes Empty as "" and a file as a one-element array.
func (a Attachment) MarshalJSON() ([]byte, error) {
	if a.IsEmpty() {
		return []byte(`""`), nil
	}
	return json.Marshal([]attachmentRef{{URL: a.url}})
}

// UnmarshalJSON accepts "", a URL string, or an array of {url} objects.
func (a *Attachment) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = AttachmentFromField(raw)
	return nil
}

// AttachmentFromField decodes a stored field value: an array whose first
// element carries a url (or is itself a string), a plain string, or nothing.
func AttachmentFromField(v any) Attachment {
	switch val := v.(type) {
	case nil:
		return Empty
	case Attachment:
		return val
	case string:
		return NewAttachment(val)
	case []any:
		if len(val) == 0 {
			return Empty
		}
		return AttachmentFromField(firstURL(val[0]))
	case []map[string]any:
		if len(val) == 0 {
			return Empty
		}
		return AttachmentFromField(firstURL(val[0]))
	case map[string]any:
		return AttachmentFromField(firstURL(val))
	}
	return Empty
}

func firstURL(v any) any {
	if m, ok := v.(map[string]any); ok {
		u, _ := m["url"].(string)
		return u
	}
	return v
}
