package respack

import "strings"

// ParsedName is a basename split according to the naming convention
// `<name>(.<flag>)*.<extension>`.
type ParsedName struct {
	// Name is the resource name with flags and extension removed.
	// Verbatim segments ("quoted") are folded back into it.
	Name string

	// Flags holds the remaining segments in the order they appeared.
	Flags []string

	// Extension is the lowercased last segment, or empty.
	Extension string
}

// ParseName splits a filesystem basename into name, flags and extension.
//
// The first dot-separated segment is always the name. A middle segment wrapped
// in double quotes and longer than two characters is a verbatim continuation
// of the name: `foo."bar".png` has the name "foo.bar". Every other middle
// segment is a flag. When withExtension is set and there are at least two
// segments, the last one is lowercased and becomes the extension. Directories
// are parsed with withExtension set to false.
func ParseName(basename string, withExtension bool) ParsedName {
	parts := strings.Split(basename, ".")

	var name strings.Builder
	name.WriteString(parts[0])

	middle := parts[1:]
	ext := ""
	if withExtension && len(parts) >= 2 {
		middle = parts[1 : len(parts)-1]
		ext = strings.ToLower(parts[len(parts)-1])
	}

	flags := make([]string, 0, len(middle))
	for _, part := range middle {
		if isVerbatim(part) {
			name.WriteByte('.')
			name.WriteString(part[1 : len(part)-1])
			continue
		}
		flags = append(flags, part)
	}

	return ParsedName{Name: name.String(), Flags: flags, Extension: ext}
}

// String joins the parsed name back into a basename. Dots inside the name
// are written as verbatim segments, so ParseName(p.String(), ...) gives back p.
//
// The result is canonical: verbatim segments come right after the first
// segment, before any flag. A basename that interleaves them, such as
// `a.flag."b".png`, parses the same but is rebuilt as `a."b".flag.png`.
func (p ParsedName) String() string {
	return FormatName(p.Name, p.Flags, p.Extension)
}

// FormatName builds a basename from its parts in the canonical order
// described at [ParsedName.String]. It is the inverse of ParseName.
func FormatName(name string, flags []string, ext string) string {
	var sb strings.Builder
	sb.WriteString(quoteName(name))
	for _, flag := range flags {
		sb.WriteByte('.')
		sb.WriteString(flag)
	}
	if ext != "" {
		sb.WriteByte('.')
		sb.WriteString(ext)
	}
	return sb.String()
}

// quoteName wraps every dot-separated continuation of name in double quotes.
func quoteName(name string) string {
	first, rest, found := strings.Cut(name, ".")
	if !found {
		return name
	}
	var sb strings.Builder
	sb.WriteString(first)
	for _, part := range strings.Split(rest, ".") {
		sb.WriteString(`."`)
		sb.WriteString(part)
		sb.WriteByte('"')
	}
	return sb.String()
}

func isVerbatim(segment string) bool {
	return len(segment) > 2 && segment[0] == '"' && segment[len(segment)-1] == '"'
}
