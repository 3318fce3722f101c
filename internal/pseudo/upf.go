package pseudo

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/roach88/sssp/internal/attr"
	"github.com/roach88/sssp/internal/store"
)

// NodeType is the store node type of a UPF record.
const NodeType = "pseudo.upf"

// Attribute keys of a stored UPF record.
const (
	KeyElement  = "element"
	KeyFilename = "filename"
	KeyMD5      = "md5"
)

// ErrParse indicates content that is not a valid UPF file.
var ErrParse = errors.New("pseudo: parse error")

var (
	// UPF v2: <PP_HEADER ... element="He" ...>
	upfV2Element = regexp.MustCompile(`(?s)<PP_HEADER\b[^>]*?\belement\s*=\s*"\s*([A-Za-z]{1,3})\s*"`)

	// UPF v1: the header block holds one value per line, "He   Element".
	upfV1Header  = regexp.MustCompile(`(?s)<PP_HEADER>(.*?)</PP_HEADER>`)
	upfV1Element = regexp.MustCompile(`(?m)^\s*([A-Za-z]{1,3})\s+Element\b`)
)

// Record is a parsed pseudopotential file.
type Record interface {
	Element() string
	Filename() string
	MD5() string
}

// UPF is a pseudopotential record in the Unified Pseudopotential Format.
type UPF struct {
	element  string
	filename string
	md5      string
	content  []byte
	node     store.Node
}

// Parse builds an unstored UPF record from file content.
// Returns an error wrapping ErrParse if no valid element can be found.
func Parse(filename string, content []byte) (*UPF, error) {
	element, err := parseElement(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, filename, err)
	}

	sum := md5.Sum(content)
	return &UPF{
		element:  element,
		filename: filename,
		md5:      hex.EncodeToString(sum[:]),
		content:  content,
	}, nil
}

// ParseFile reads and parses the UPF file at path.
func ParseFile(path string) (*UPF, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pseudo: %w", err)
	}
	return Parse(filepath.Base(path), content)
}

func parseElement(content []byte) (string, error) {
	var symbol string
	if m := upfV2Element.FindSubmatch(content); m != nil {
		symbol = string(m[1])
	} else if h := upfV1Header.FindSubmatch(content); h != nil {
		m := upfV1Element.FindSubmatch(h[1])
		if m == nil {
			return "", errors.New("header has no element line")
		}
		symbol = string(m[1])
	} else {
		return "", errors.New("no PP_HEADER found")
	}

	element := normalizeSymbol(symbol)
	if !IsElement(element) {
		return "", fmt.Errorf("unknown element %q", symbol)
	}
	return element, nil
}

// normalizeSymbol capitalizes the first letter only: "HE" and "he" become "He".
func normalizeSymbol(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Element returns the chemical symbol of the record.
func (u *UPF) Element() string { return u.element }

// Filename returns the name of the file the record was parsed from.
func (u *UPF) Filename() string { return u.filename }

// MD5 returns the hex md5 of the content.
func (u *UPF) MD5() string { return u.md5 }

// Content returns the raw file content.
func (u *UPF) Content() []byte { return u.content }

// ID returns the store id, zero if the record is not stored.
func (u *UPF) ID() int64 { return u.node.ID }

// UUID returns the store uuid, empty if the record is not stored.
func (u *UPF) UUID() string { return u.node.UUID }

// Stored reports whether the record has been persisted.
func (u *UPF) Stored() bool { return u.node.Stored() }

func (u *UPF) String() string {
	return fmt.Sprintf("UPF<%s:%s>", u.element, u.filename)
}

// Creator persists nodes. Satisfied by *store.Store.
type Creator interface {
	Create(ctx context.Context, n *store.Node) error
}

// Store persists the record as an immutable data node.
// Storing an already stored record is a no-op.
func (u *UPF) Store(ctx context.Context, c Creator) error {
	if u.Stored() {
		return nil
	}
	n := store.Node{
		Type:  NodeType,
		Label: u.filename,
		Attributes: attr.Object{
			KeyElement:  attr.String(u.element),
			KeyFilename: attr.String(u.filename),
			KeyMD5:      attr.String(u.md5),
		},
		Content: u.content,
	}
	if err := c.Create(ctx, &n); err != nil {
		return fmt.Errorf("store pseudo %s: %w", u.filename, err)
	}
	u.node = n
	return nil
}

// FromNode rebuilds a record from a stored node.
func FromNode(n store.Node) (*UPF, error) {
	if n.Type != NodeType {
		return nil, fmt.Errorf("node %d has type %q, not %q", n.ID, n.Type, NodeType)
	}

	values := make(map[string]string, 3)
	for _, key := range []string{KeyElement, KeyFilename, KeyMD5} {
		v, ok := n.Attribute(key)
		if !ok {
			return nil, fmt.Errorf("node %d: missing attribute %q", n.ID, key)
		}
		s, ok := v.(attr.String)
		if !ok {
			return nil, fmt.Errorf("node %d: attribute %q is %T, not a string", n.ID, key, v)
		}
		values[key] = string(s)
	}

	return &UPF{
		element:  values[KeyElement],
		filename: values[KeyFilename],
		md5:      values[KeyMD5],
		content:  n.Content,
		node:     n,
	}, nil
}
