package tasks

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/gogpu/respack"
)

// AppleStringsFlag marks a directory to be turned into a .strings file.
const AppleStringsFlag = "applestrings"

// CreateAppleStrings replaces a directory flagged AppleStrings with
// <name>.strings. Each file of the directory becomes one entry: the file
// name is the key and its UTF-8 content the value. The result is UTF-16
// with a byte order mark and keeps the other flags of the directory.
type CreateAppleStrings struct{ respack.BaseTask }

func (*CreateAppleStrings) Name() string { return "CreateAppleStrings" }

func (*CreateAppleStrings) OperateDirectory(tc *respack.TaskContext, d *respack.Directory) (bool, error) {
	if !hasFlagFold(d, AppleStringsFlag) {
		return false, nil
	}
	if d.Parent() == nil {
		tc.Log().Warn("root directory cannot become a strings file")
		return false, nil
	}

	var sb strings.Builder
	for _, f := range d.Files() {
		content, err := os.ReadFile(f.Path())
		if err != nil {
			return false, fmt.Errorf("strings entry %s: %w", f, err)
		}
		sb.WriteByte('"')
		sb.WriteString(escapeStrings(f.Name()))
		sb.WriteString(`" = "`)
		sb.WriteString(escapeStrings(string(content)))
		sb.WriteString("\";\n")
	}
	if len(d.Directories()) > 0 {
		tc.Log().Warn("subdirectories of a strings directory are dropped", "dir", d.String())
	}

	data, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(sb.String()))
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", d, err)
	}
	path := tc.NewBlankFile(d.Name(), "strings")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", d, err)
	}

	parent := d.Parent()
	parent.RemoveChild(d)
	flags := d.FlagsExcept(func(flag string) bool { return strings.EqualFold(flag, AppleStringsFlag) })
	parent.AddFile(respack.NewFileNamed(path, d.Name(), flags, "strings"))
	tc.Log().Info("strings file created", "dir", d.String())
	return true, nil
}

var stringsEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

func escapeStrings(s string) string { return stringsEscaper.Replace(s) }

func hasFlagFold(r respack.Resource, flag string) bool {
	for _, f := range r.Flags() {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}
