package site

import (
	"fmt"
	"html"
	"path"
	"sort"
	"strings"
)

// FileTree represents a node in the transcript file tree.
type FileTree struct {
	Name     string
	Title    string // Display name: the transcript title, or a formatted directory name.
	Path     string // For files: full relative path. For dirs: directory path (e.g., "team/2024").
	IsDir    bool
	Children []*FileTree
}

// BuildTree constructs a FileTree from a list of relative file paths.
// titleMap is an optional map of relative path -> display title.
func BuildTree(paths []string, titleMap map[string]string) *FileTree {
	root := &FileTree{Name: "chats", IsDir: true}

	for _, p := range paths {
		parts := strings.Split(p, "/")
		current := root
		for i, part := range parts {
			isLast := i == len(parts)-1
			found := false
			for _, child := range current.Children {
				if child.Name == part && child.IsDir == !isLast {
					current = child
					found = true
					break
				}
			}
			if found {
				continue
			}
			node := &FileTree{
				Name:  part,
				IsDir: !isLast,
			}
			if isLast {
				node.Path = p
				node.Title = titleMap[p]
			} else {
				node.Path = strings.Join(parts[:i+1], "/")
				node.Title = formatDirName(part)
			}
			current.Children = append(current.Children, node)
			current = node
		}
	}

	sortTree(root)
	return root
}

// Dirs returns the paths of every directory in the tree, the root ("") first.
func (t *FileTree) Dirs() []string {
	out := []string{""}
	var walk func(*FileTree)
	walk = func(n *FileTree) {
		for _, c := range n.Children {
			if c.IsDir {
				out = append(out, c.Path)
				walk(c)
			}
		}
	}
	walk(t)
	return out
}

// sortTree recursively sorts tree children: directories first, then files, alphabetically.
func sortTree(node *FileTree) {
	sort.Slice(node.Children, func(i, j int) bool {
		if node.Children[i].IsDir != node.Children[j].IsDir {
			return node.Children[i].IsDir
		}
		return node.Children[i].Name < node.Children[j].Name
	})
	for _, child := range node.Children {
		if child.IsDir {
			sortTree(child)
		}
	}
}

// ToHTML renders the file tree as nested <ul><li> HTML for the sidebar.
// activePath is the transcript (or directory) being viewed.
func (t *FileTree) ToHTML(activePath string, links Linker) string {
	activeAncestors := computeActiveAncestors(activePath)

	var b strings.Builder
	homeActive := ""
	if activePath == "" {
		homeActive = ` class="active"`
	}
	fmt.Fprintf(&b, `<ul><li class="file home-link"><a href="%s"%s>All chats</a></li></ul>`+"\n", html.EscapeString(links.Dir("")), homeActive)

	renderChildren(&b, t, activePath, links, activeAncestors)
	return b.String()
}

// computeActiveAncestors returns the set of directory paths that contain
// activePath, including activePath itself when it names a directory.
// For "team/2024/a.md" it returns {"team", "team/2024", "team/2024/a.md"}.
func computeActiveAncestors(activePath string) map[string]bool {
	ancestors := make(map[string]bool)
	if activePath == "" {
		return ancestors
	}
	parts := strings.Split(activePath, "/")
	for i := 1; i <= len(parts); i++ {
		ancestors[strings.Join(parts[:i], "/")] = true
	}
	return ancestors
}

func renderChildren(b *strings.Builder, node *FileTree, activePath string, links Linker, activeAncestors map[string]bool) {
	if len(node.Children) == 0 {
		return
	}
	b.WriteString("<ul>\n")
	for _, child := range node.Children {
		if child.IsDir {
			expanded := ""
			if activeAncestors[child.Path] {
				expanded = " expanded"
			}
			label := child.Title
			if label == "" {
				label = child.Name
			}
			fmt.Fprintf(b, `<li class="dir%s"><span class="dir-toggle">%s</span>`+"\n", expanded, html.EscapeString(label))
			renderChildren(b, child, activePath, links, activeAncestors)
			b.WriteString("</li>\n")
			continue
		}
		label := child.Title
		if label == "" {
			label = cleanDisplayName(child.Name)
		}
		activeClass := ""
		if child.Path == activePath {
			activeClass = ` class="active"`
		}
		fmt.Fprintf(b, `<li class="file"><a href="%s" data-source="%s"%s>%s</a></li>`+"\n",
			html.EscapeString(links.Page(child.Path)), html.EscapeString(child.Path), activeClass, html.EscapeString(label))
	}
	b.WriteString("</ul>\n")
}

// PagePath maps a transcript path onto the path of its generated page.
func PagePath(p string) string {
	return strings.TrimSuffix(p, path.Ext(p)) + ".html"
}

// cleanDisplayName strips the extension from a file name.
func cleanDisplayName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

// formatDirName converts a directory name to a human-readable display name.
// Multi-word slugs are title-cased.
func formatDirName(name string) string {
	words := strings.FieldsFunc(name, func(c rune) bool {
		return c == '-' || c == '_'
	})
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
