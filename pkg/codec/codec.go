// Package codec converts workflows to and from their JSON file and share URL
// forms.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/n3wth/skillflow/pkg/models"
)

// MaxShareLength is the largest compact JSON document EncodeShare accepts.
const MaxShareLength = 2000

const (
	sharePath     = "/workflows/new"
	shareParam    = "data"
	importedName  = "Imported Workflow"
	importedLabel = " (Imported)"
)

// Export renders the workflow as indented JSON.
func Export(wf *models.Workflow) (string, error) {
	data, err := marshal(wf, "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// marshal encodes v without escaping <, > and &, so documents match what a
// browser's JSON.stringify produces.
func marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)

	if err := encoder.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// wireWorkflow accepts any timestamp format: imports reset both timestamps.
type wireWorkflow struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Nodes       *[]*models.WorkflowNode `json:"nodes"`
	Connections *[]*models.Connection   `json:"connections"`
	IsPublic    bool                    `json:"isPublic"`
	Tags        []string                `json:"tags"`
	Author      *string                 `json:"author"`
	CreatedAt   json.RawMessage         `json:"createdAt"`
	UpdatedAt   json.RawMessage         `json:"updatedAt"`
}

// Import parses an exported workflow and gives it a fresh identity.
func Import(text string) (*models.Workflow, bool) {
	return ImportAt(text, time.Now().UTC(), uuid.NewString)
}

// ImportAt is Import with an explicit clock and id source. The document must
// carry an id, nodes and connections; anything else yields false.
func ImportAt(text string, now time.Time, newID func() string) (*models.Workflow, bool) {
	var wire wireWorkflow
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, false
	}

	if wire.ID == "" || wire.Nodes == nil || wire.Connections == nil {
		return nil, false
	}

	for _, node := range *wire.Nodes {
		if node == nil {
			return nil, false
		}
	}

	for _, conn := range *wire.Connections {
		if conn == nil {
			return nil, false
		}
	}

	name := importedName
	if wire.Name != "" {
		name = wire.Name + importedLabel
	}

	wf := &models.Workflow{
		ID:          newID(),
		Name:        name,
		Description: wire.Description,
		Nodes:       *wire.Nodes,
		Connections: *wire.Connections,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsPublic:    wire.IsPublic,
		Tags:        wire.Tags,
		Author:      wire.Author,
	}

	return wf.Clone(), true
}

// EncodeShare returns the share payload of wf, or false when the workflow is
// too large to travel in a URL.
func EncodeShare(wf *models.Workflow) (string, bool) {
	data, err := marshal(wf, "")
	if err != nil || len(data) > MaxShareLength {
		return "", false
	}

	return base64.StdEncoding.EncodeToString([]byte(escapeComponent(string(data)))), true
}

// ShareURL builds the link that reopens wf in the builder at base.
func ShareURL(base string, wf *models.Workflow) (string, bool) {
	encoded, ok := EncodeShare(wf)
	if !ok {
		return "", false
	}

	return strings.TrimSuffix(base, "/") + sharePath + "?" + shareParam + "=" + encoded, true
}

// DecodeShare reverses EncodeShare and imports the result.
func DecodeShare(data string) (*models.Workflow, bool) {
	if data == "" {
		return nil, false
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, false
	}

	text, err := url.PathUnescape(string(raw))
	if err != nil {
		return nil, false
	}

	return Import(text)
}

// ParseShareURL extracts and decodes the data parameter of a share link.
func ParseShareURL(link string) (*models.Workflow, bool) {
	parsed, err := url.Parse(link)
	if err != nil {
		return nil, false
	}

	// Query decoding turns the unescaped '+' of base64 into a space.
	data := strings.ReplaceAll(parsed.Query().Get(shareParam), " ", "+")

	return DecodeShare(data)
}

// escapeComponent percent-encodes every byte except the unreserved set
// A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)

			continue
		}

		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}

	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}

	return strings.IndexByte("-_.!~*'()", c) >= 0
}
