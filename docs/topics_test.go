package docs

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// The documentation index and the topic files must stay in sync: every
// topic listed in readme.md loads, and every topic file is listed.
func TestTopics(t *testing.T) {
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var topicsInReadme []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topicsInReadme = append(topicsInReadme, strings.TrimSpace(matches[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}
	if len(topicsInReadme) == 0 {
		t.Fatal("readme.md lists no topics")
	}

	for _, topic := range topicsInReadme {
		t.Run("load_"+topic, func(t *testing.T) {
			if _, err := GetTopic(topic); err != nil {
				t.Errorf("failed to get topic %q: %v", topic, err)
			}
		})
	}

	all, err := AllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range all {
		found := false
		for _, listed := range topicsInReadme {
			if listed == topic {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
}

func TestGetTopic(t *testing.T) {
	if _, err := GetTopic("no-such-topic"); err == nil {
		t.Error("unknown topic loaded")
	}

	content, err := GetTopic("*")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Tax lots", "# Reconciliation", "# Symbol mappings"} {
		if !strings.Contains(content, want) {
			t.Errorf("expanded topics miss %q", want)
		}
	}
}

// Every fenced code block in the documentation declares a language, and
// command examples are marked bash. This keeps the rendered topics
// highlighted consistently.
func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			content, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}

			root := goldmark.DefaultParser().Parse(text.NewReader(content))
			ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				if !entering {
					return ast.WalkContinue, nil
				}
				fcb, ok := n.(*ast.FencedCodeBlock)
				if !ok {
					return ast.WalkContinue, nil
				}
				if fcb.Info == nil {
					t.Error("fenced code block without a language")
					return ast.WalkContinue, nil
				}
				if lang := string(fcb.Info.Segment.Value(content)); lang != "bash" {
					t.Errorf("fenced code block language %q, want bash", lang)
				}
				return ast.WalkContinue, nil
			})
		})
	}
}
