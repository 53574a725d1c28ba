// Package logging provides log writers that redact credentials before
// anything reaches the console or a file.
package logging

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/ruihexianling/tg2notion/pkg/configuration"
)

const redactMask = "***"

// ScrubbingWriter is an io.Writer that replaces sensitive terms with a
// mask before delegating to the wrapped writer.
type ScrubbingWriter interface {
	io.Writer
	AddTerm(term string)
	RemoveTerm(term string)
}

type scrubEntry struct {
	groupToRedact int
	regex         *regexp.Regexp
}

// ScrubDict maps regex sources to their compiled form and the match
// group that gets masked.
type ScrubDict map[string]scrubEntry

type scrubbingWriter struct {
	m      sync.RWMutex
	writer io.Writer
	dict   ScrubDict
}

// NewScrubbingWriter wraps writer so that every known secret is masked.
// The mandatory patterns (Bearer headers, token JSON fields) are always
// included on top of the given dict.
func NewScrubbingWriter(writer io.Writer, dict ScrubDict) ScrubbingWriter {
	return &scrubbingWriter{
		writer: writer,
		dict:   addMandatoryMasking(dict),
	}
}

// ScrubDictFromConfig seeds a dict with the credentials currently held
// in the configuration.
func ScrubDictFromConfig(config configuration.Configuration) ScrubDict {
	dict := addMandatoryMasking(ScrubDict{})
	addTerm(dict, config.GetString(configuration.AUTHENTICATION_TOKEN), 0)
	return dict
}

func (w *scrubbingWriter) AddTerm(term string) {
	w.m.Lock()
	defer w.m.Unlock()
	addTerm(w.dict, term, 0)
}

func (w *scrubbingWriter) RemoveTerm(term string) {
	w.m.Lock()
	defer w.m.Unlock()
	delete(w.dict, regexp.QuoteMeta(term))
}

func (w *scrubbingWriter) Write(p []byte) (int, error) {
	w.m.RLock()
	scrubbed := scrub(p, w.dict)
	w.m.RUnlock()

	if _, err := w.writer.Write(scrubbed); err != nil {
		return 0, err
	}
	// report the original length, the redacted form may be shorter
	return len(p), nil
}

func addTerm(dict ScrubDict, term string, groupToRedact int) {
	if term == "" {
		return
	}
	quoted := regexp.QuoteMeta(term)
	dict[quoted] = scrubEntry{groupToRedact, regexp.MustCompile(quoted)}
}

func addMandatoryMasking(dict ScrubDict) ScrubDict {
	const charGroup = "[a-zA-Z0-9-_:.]{6,}"
	patterns := []struct {
		source string
		group  int
	}{
		{`(http(s)?://)((.+?):(.+?))@(\S+)`, 3},
		{fmt.Sprintf(`([bB]earer )(%s)`, charGroup), 2},
		{fmt.Sprintf(`("token":)"(%s)"`, charGroup), 2},
		{fmt.Sprintf(`(NOTION_TOKEN)=(%s)`, charGroup), 2},
		{fmt.Sprintf(`(ntn_)(%s)`, charGroup), 2},
	}
	for _, p := range patterns {
		dict[p.source] = scrubEntry{p.group, regexp.MustCompile(p.source)}
	}
	return dict
}

func scrub(p []byte, dict ScrubDict) []byte {
	s := string(p)
	for _, entry := range dict {
		matches := entry.regex.FindAllStringSubmatch(s, -1)
		for _, match := range matches {
			s = strings.ReplaceAll(s, match[entry.groupToRedact], redactMask)
		}
	}
	return []byte(s)
}
