// Package docs embeds the tsim documentation, one markdown topic per file.
//
// The readme is the index of the topics, it is shown when no topic is asked
// for and is not a topic itself.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.md
var files embed.FS

// Index is the name of the page listing the topics.
const Index = "readme"

// Topic is a documentation page.
type Topic struct {
	Name  string // the file name, without extension
	Title string // the first level one heading
}

// Topics returns the available topics sorted by name.
func Topics() ([]Topic, error) {
	paths, err := fs.Glob(files, "*.md")
	if err != nil {
		return nil, err
	}
	var topics []Topic
	for _, p := range paths {
		name := strings.TrimSuffix(p, ".md")
		if name == Index {
			continue
		}
		content, err := files.ReadFile(p)
		if err != nil {
			return nil, err
		}
		topics = append(topics, Topic{Name: name, Title: title(content)})
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

// Names returns the names of all topics, sorted.
func Names() []string {
	topics, _ := Topics()
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names
}

// Read returns the markdown of the named topics, separated by a blank line.
// "*" stands for every topic, and no name at all for the index.
func Read(names ...string) (string, error) {
	if len(names) == 0 {
		names = []string{Index}
	}
	var b bytes.Buffer
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			expanded = Names()
		}
		for _, n := range expanded {
			content, err := files.ReadFile(n + ".md")
			if err != nil {
				return "", fmt.Errorf("topic %q not found: %w", n, err)
			}
			b.Write(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// Listing returns a markdown list of the topics and their titles.
func Listing() (string, error) {
	topics, err := Topics()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, t := range topics {
		fmt.Fprintf(&b, "* %s: %s\n", t.Name, t.Title)
	}
	return b.String(), nil
}

// title returns the text of the first "# " heading, empty if there is none.
func title(content []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(content))
	for sc.Scan() {
		if line, ok := strings.CutPrefix(sc.Text(), "# "); ok {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
