package extract

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/huangsam/legacylens/schema"
)

var extensionTech = map[string]schema.Technology{
	".pl":      schema.PerlTech,
	".pm":      schema.PerlTech,
	".t":       schema.PerlTech,
	".cgi":     schema.PerlTech,
	".process": schema.TibcoTech,
	".bwp":     schema.TibcoTech,
	".ktr":     schema.PentahoTech,
	".kjb":     schema.PentahoTech,
}

// sniffLimit bounds how much content is inspected when the extension is ambiguous.
const sniffLimit = 4096

// DetectTechnology classifies a file by extension, falling back to content sniffing.
func DetectTechnology(filename string, content []byte) schema.Technology {
	if tech, ok := extensionTech[strings.ToLower(filepath.Ext(filename))]; ok {
		return tech
	}

	head := content
	if len(head) > sniffLimit {
		head = head[:sniffLimit]
	}

	switch {
	case bytes.HasPrefix(head, []byte("#!")) && bytes.Contains(firstLine(head), []byte("perl")):
		return schema.PerlTech
	case bytes.Contains(head, []byte("pd:ProcessDefinition")) || bytes.Contains(head, []byte("xmlns.tibco.com")):
		return schema.TibcoTech
	case bytes.Contains(head, []byte("<transformation>")) || bytes.Contains(head, []byte("<job>")):
		return schema.PentahoTech
	case bytes.Contains(head, []byte("use strict;")) || bytes.Contains(head, []byte("my $")):
		return schema.PerlTech
	default:
		return schema.OtherTech
	}
}

func firstLine(b []byte) []byte {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i]
	}
	return b
}
