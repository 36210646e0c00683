package docs

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// readmeTopics returns the topics listed as "* topic: description" in the readme.
func readmeTopics(t *testing.T) []string {
	t.Helper()
	content, err := os.ReadFile(Readme + ".md")
	if err != nil {
		t.Fatal(err)
	}
	item := regexp.MustCompile(`^\*\s+([^:]+):`)
	var topics []string
	for _, line := range strings.Split(string(content), "\n") {
		if m := item.FindStringSubmatch(line); m != nil {
			topics = append(topics, strings.TrimSpace(m[1]))
		}
	}
	return topics
}

func TestTopics(t *testing.T) {
	listed := readmeTopics(t)
	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("GetTopic(%q) error = %v", topic, err)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(all, ",") != "config,dataset,debts,performance,risk,tax" {
		t.Errorf("GetAllTopics() = %v", all)
	}
	for _, topic := range all {
		found := false
		for _, l := range listed {
			found = found || l == topic
		}
		if !found {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}

	if _, err := GetTopic("unknown"); err == nil {
		t.Error("GetTopic(unknown) succeeded")
	}
	every, err := GetTopic("*")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(every, "# Debts") || !strings.Contains(every, "# Tax") {
		t.Errorf("GetTopic(*) misses topics")
	}
}

// TestTitles checks that every topic starts with a level one heading.
func TestTitles(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		doc := goldmark.DefaultParser().Parse(text.NewReader(content))
		h, ok := doc.FirstChild().(*ast.Heading)
		if !ok || h.Level != 1 {
			t.Errorf("%s does not start with a title", file)
		}
	}
}
