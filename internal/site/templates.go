package site

// layoutTemplate holds the shell shared by transcript and directory pages.
// Each page defines a "main" block.
const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="en" data-theme="light">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}} · {{.SiteTitle}}</title>
  <link rel="stylesheet" href="{{.AssetBase}}style.css">
  {{if .Highlight}}<link rel="stylesheet" href="{{.AssetBase}}chroma.css">{{end}}
</head>
<body data-search-index="{{.SearchIndexURL}}"{{if .LiveURL}} data-live="{{.LiveURL}}" data-source="{{.SourcePath}}"{{end}}>
  <nav class="sidebar" id="sidebar">
    <div class="sidebar-header">
      <a class="project-title" href="{{.HomeURL}}">{{.SiteTitle}}</a>
      <input type="text" id="search-input" placeholder="Filter chats..." autocomplete="off">
    </div>
    <div class="sidebar-tree" id="sidebar-tree">
      {{.TreeHTML}}
    </div>
  </nav>
  <div class="sidebar-overlay" id="sidebar-overlay"></div>
  <main class="content">
    <div class="top-bar">
      <button class="menu-toggle" id="menu-toggle" aria-label="Toggle sidebar">
        <svg width="24" height="24" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">
          <line x1="3" y1="6" x2="21" y2="6"/><line x1="3" y1="12" x2="21" y2="12"/><line x1="3" y1="18" x2="21" y2="18"/>
        </svg>
      </button>
      {{if .IsChat}}
      <div class="chat-tools">
        <button type="button" class="tool-button" id="collapse-all">Collapse all</button>
        <button type="button" class="tool-button" id="expand-all">Expand all</button>
      </div>
      {{end}}
      <button class="theme-toggle" id="theme-toggle" aria-label="Toggle theme">
        <svg class="sun-icon" width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">
          <circle cx="12" cy="12" r="5"/><line x1="12" y1="1" x2="12" y2="3"/><line x1="12" y1="21" x2="12" y2="23"/><line x1="1" y1="12" x2="3" y2="12"/><line x1="21" y1="12" x2="23" y2="12"/>
        </svg>
        <svg class="moon-icon" width="20" height="20" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">
          <path d="M21 12.79A9 9 0 1 1 11.21 3 7 7 0 0 0 21 12.79z"/>
        </svg>
      </button>
    </div>
    <article class="page-content">
      {{template "main" .}}
    </article>
  </main>
  <script src="{{.AssetBase}}chat.js"></script>
</body>
</html>{{end}}`

// chatTemplate renders one transcript.
const chatTemplate = `{{define "main"}}
      {{if .SourcePath}}<div class="chat-meta">
        <span class="meta-badge">{{.SourcePath}}</span>
        <span class="meta-badge">{{.Stats.Sections}} sections</span>
        <span class="meta-badge">{{.Stats.UserMessages}} user</span>
        <span class="meta-badge">{{.Stats.AssistantMessages}} assistant</span>
      </div>{{end}}
      <div class="markdown-body">
        {{.Content}}
      </div>
      {{if .Diagnostics}}
      <details class="diagnostics">
        <summary>{{len .Diagnostics}} parse notes</summary>
        <ul>{{range .Diagnostics}}<li>{{.String}}</li>{{end}}</ul>
      </details>
      {{end}}
{{end}}`

// indexTemplate renders a directory of transcripts.
const indexTemplate = `{{define "main"}}
      <h1>{{.Title}}</h1>
      {{if .Intro}}<div class="dir-intro">{{.Intro}}</div>{{end}}
      {{if .Dirs}}
      <ul class="dir-list">
        {{range .Dirs}}<li><a href="{{.URL}}">{{.Name}}/</a></li>{{end}}
      </ul>
      {{end}}
      {{if .Entries}}
      <div class="chat-list">
        {{range .Entries}}
        <a class="chat-card" href="{{.URL}}">
          <div class="chat-card-title">{{.Title}}</div>
          <div class="chat-card-path">{{.Path}}</div>
          {{if .Preview}}<div class="chat-card-preview">{{.Preview}}</div>{{end}}
          <div class="chat-card-stats">{{.Stats.Sections}} sections · {{.Stats.Messages}} messages</div>
        </a>
        {{end}}
      </div>
      {{else}}
      <p class="empty">No transcripts here.</p>
      {{end}}
{{end}}`

// cssContent is the stylesheet for every generated page.
const cssContent = `/* ============ Variables ============ */
:root {
  --bg: #ffffff;
  --bg-secondary: #f8f9fa;
  --bg-sidebar: #f1f3f5;
  --text: #212529;
  --text-secondary: #495057;
  --text-muted: #868e96;
  --border: #dee2e6;
  --accent: #228be6;
  --accent-light: #e7f5ff;
  --code-bg: #f1f3f5;
  --user-bg: #e7f5ff;
  --assistant-bg: #f8f9fa;
  --selected-ring: #fab005;
  --sidebar-width: 280px;
  --content-max-width: 920px;
}

[data-theme="dark"] {
  --bg: #1a1b26;
  --bg-secondary: #1f2030;
  --bg-sidebar: #16171f;
  --text: #c0caf5;
  --text-secondary: #a9b1d6;
  --text-muted: #565f89;
  --border: #292e42;
  --accent: #7aa2f7;
  --accent-light: #1a1b2e;
  --code-bg: #1f2030;
  --user-bg: #1e2740;
  --assistant-bg: #1f2030;
  --selected-ring: #e0af68;
}

/* ============ Base ============ */
*, *::before, *::after { box-sizing: border-box; margin: 0; padding: 0; }

body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
  color: var(--text);
  background: var(--bg);
  line-height: 1.6;
  display: flex;
  min-height: 100vh;
}

a { color: var(--accent); text-decoration: none; }
a:hover { text-decoration: underline; }

/* ============ Sidebar ============ */
.sidebar {
  width: var(--sidebar-width);
  background: var(--bg-sidebar);
  border-right: 1px solid var(--border);
  position: fixed;
  top: 0; left: 0; bottom: 0;
  overflow-y: auto;
  z-index: 100;
}

.sidebar-header {
  padding: 20px 16px 12px;
  border-bottom: 1px solid var(--border);
  position: sticky;
  top: 0;
  background: var(--bg-sidebar);
}

.project-title {
  display: block;
  font-size: 1.1rem;
  font-weight: 700;
  margin-bottom: 12px;
}

#search-input {
  width: 100%;
  padding: 8px 12px;
  border: 1px solid var(--border);
  border-radius: 6px;
  background: var(--bg);
  color: var(--text);
}

.sidebar-tree { padding: 8px 0; }
.sidebar-tree ul { list-style: none; }
.sidebar-tree ul ul { padding-left: 16px; }
.sidebar-tree .hidden { display: none; }

.sidebar-tree .dir > .dir-toggle {
  display: block;
  padding: 4px 16px;
  font-size: 0.82rem;
  font-weight: 600;
  color: var(--text-secondary);
  cursor: pointer;
  user-select: none;
}

.sidebar-tree .dir > .dir-toggle::before { content: "\25B6"; font-size: 0.6rem; margin-right: 6px; }
.sidebar-tree .dir.expanded > .dir-toggle::before { content: "\25BC"; }
.sidebar-tree .dir > ul { display: none; }
.sidebar-tree .dir.expanded > ul { display: block; }

.sidebar-tree .file a {
  display: block;
  padding: 3px 16px 3px 22px;
  font-size: 0.82rem;
  color: var(--text-muted);
  white-space: nowrap;
  overflow: hidden;
  text-overflow: ellipsis;
}

.sidebar-tree .file a.active { background: var(--accent-light); color: var(--accent); font-weight: 600; }

.sidebar-overlay { display: none; position: fixed; inset: 0; background: rgba(0,0,0,0.4); z-index: 99; }
.sidebar-overlay.visible { display: block; }

/* ============ Layout ============ */
.content { margin-left: var(--sidebar-width); flex: 1; min-width: 0; }

.top-bar {
  display: flex;
  justify-content: flex-end;
  align-items: center;
  gap: 8px;
  padding: 8px 24px;
  border-bottom: 1px solid var(--border);
  background: var(--bg);
  position: sticky;
  top: 0;
  z-index: 50;
}

.menu-toggle { display: none; background: none; border: none; color: var(--text); margin-right: auto; }

.theme-toggle, .tool-button {
  background: none;
  border: 1px solid var(--border);
  border-radius: 6px;
  color: var(--text);
  cursor: pointer;
  padding: 6px 10px;
}

[data-theme="dark"] .moon-icon, [data-theme="light"] .sun-icon { display: none; }

.page-content { max-width: var(--content-max-width); margin: 0 auto; padding: 32px 40px 64px; }
.page-content h1 { font-size: 1.9rem; margin-bottom: 16px; padding-bottom: 8px; border-bottom: 2px solid var(--border); }

/* ============ Chat ============ */
.chat-meta { display: flex; flex-wrap: wrap; gap: 6px; margin-bottom: 12px; }
.meta-badge { font-size: 0.75rem; padding: 2px 8px; border-radius: 10px; background: var(--bg-secondary); color: var(--text-secondary); border: 1px solid var(--border); }

.chat-container { display: flex; flex-direction: column; gap: 12px; }

.chat-section-header { display: flex; align-items: center; gap: 8px; margin-top: 16px; }
.chat-section-header[data-level="3"] { margin-left: 16px; }
.chat-section-header[data-level="4"] { margin-left: 32px; }
.header-content h2, .header-content h3, .header-content h4 { margin: 0; }

.section-toggle {
  width: 24px;
  height: 24px;
  border: none;
  background: none;
  color: var(--text-muted);
  cursor: pointer;
  font-size: 0.8rem;
}

.chat-section { display: flex; flex-direction: column; gap: 10px; }

.message {
  padding: 12px 16px;
  border-radius: 10px;
  border: 1px solid var(--border);
  cursor: pointer;
  transition: box-shadow 0.15s;
}

.message.user { background: var(--user-bg); margin-left: 48px; }
.message.assistant { background: var(--assistant-bg); margin-right: 48px; }
.message.selected { box-shadow: 0 0 0 3px var(--selected-ring); }
.message[data-speaker="direct-text"] { cursor: auto; }

.message p { margin: 0 0 8px; }
.message p:last-child { margin-bottom: 0; }
.message ul { margin: 0 0 8px 20px; }
.message blockquote { border-left: 3px solid var(--border); padding-left: 12px; color: var(--text-secondary); }
.message table { border-collapse: collapse; margin-bottom: 8px; }
.message th, .message td { border: 1px solid var(--border); padding: 4px 8px; }

.message code { font-family: "SF Mono", Menlo, Consolas, monospace; font-size: 0.85em; background: var(--code-bg); padding: 1px 4px; border-radius: 4px; }

.code-block { position: relative; margin: 8px 0; cursor: auto; }
.code-block pre { background: var(--code-bg); padding: 12px; border-radius: 6px; overflow-x: auto; }
.code-block pre code { background: none; padding: 0; }
.language-tag {
  position: absolute;
  top: 4px;
  right: 8px;
  font-size: 0.7rem;
  text-transform: uppercase;
  color: var(--text-muted);
}

.diagnostics { margin-top: 32px; font-size: 0.85rem; color: var(--text-muted); }
.diagnostics ul { margin: 8px 0 0 20px; }

/* ============ Directory ============ */
.dir-intro { margin-bottom: 24px; }
.dir-intro p { margin-bottom: 12px; }
.dir-list { list-style: none; margin-bottom: 16px; }
.dir-list li { padding: 2px 0; }

.chat-list { display: grid; grid-template-columns: repeat(auto-fill, minmax(260px, 1fr)); gap: 12px; }

.chat-card {
  display: block;
  padding: 14px;
  border: 1px solid var(--border);
  border-radius: 8px;
  color: var(--text);
}

.chat-card:hover { border-color: var(--accent); text-decoration: none; }
.chat-card-title { font-weight: 600; }
.chat-card-path, .chat-card-stats { font-size: 0.75rem; color: var(--text-muted); }
.chat-card-preview { font-size: 0.85rem; color: var(--text-secondary); margin: 6px 0; }
.empty { color: var(--text-muted); }

/* ============ Mobile ============ */
@media (max-width: 860px) {
  .sidebar { transform: translateX(-100%); transition: transform 0.2s; }
  .sidebar.open { transform: none; }
  .content { margin-left: 0; }
  .menu-toggle { display: block; }
  .page-content { padding: 24px 16px 48px; }
  .message.user, .message.assistant { margin-left: 0; margin-right: 0; }
}
`

// jsContent drives theme switching, the sidebar, and the chat interactions:
// section collapse and single-message selection.
const jsContent = `(function() {
  "use strict";

  var root = document.documentElement;

  // ===== Theme toggle =====
  function setTheme(theme) {
    root.setAttribute("data-theme", theme);
    try { localStorage.setItem("chatview-theme", theme); } catch (e) {}
  }

  var stored = null;
  try { stored = localStorage.getItem("chatview-theme"); } catch (e) {}
  if (stored) {
    setTheme(stored);
  } else if (window.matchMedia && window.matchMedia("(prefers-color-scheme: dark)").matches) {
    setTheme("dark");
  }

  var themeToggle = document.getElementById("theme-toggle");
  if (themeToggle) {
    themeToggle.addEventListener("click", function() {
      setTheme(root.getAttribute("data-theme") === "dark" ? "light" : "dark");
    });
  }

  // ===== Sidebar =====
  var sidebar = document.getElementById("sidebar");
  var overlay = document.getElementById("sidebar-overlay");
  function toggleSidebar() {
    sidebar.classList.toggle("open");
    overlay.classList.toggle("visible");
  }
  var menuToggle = document.getElementById("menu-toggle");
  if (menuToggle) menuToggle.addEventListener("click", toggleSidebar);
  if (overlay) overlay.addEventListener("click", toggleSidebar);

  document.querySelectorAll(".dir-toggle").forEach(function(toggle) {
    toggle.addEventListener("click", function() {
      this.parentElement.classList.toggle("expanded");
    });
  });

  // ===== Sidebar filter =====
  var tree = document.getElementById("sidebar-tree");
  var searchInput = document.getElementById("search-input");
  var searchIndex = null;
  var indexURL = document.body.getAttribute("data-search-index");
  if (indexURL) {
    fetch(indexURL)
      .then(function(r) { return r.json(); })
      .then(function(data) { searchIndex = data; })
      .catch(function() { searchIndex = null; });
  }

  if (searchInput && tree) {
    searchInput.addEventListener("input", function() {
      var query = this.value.toLowerCase().trim();
      var matches = {};
      if (query && searchIndex) {
        searchIndex.forEach(function(entry) {
          var haystack = (entry.title + " " + entry.summary + " " + entry.content).toLowerCase();
          if (haystack.indexOf(query) !== -1) matches[entry.source] = true;
        });
      }
      tree.querySelectorAll(".file").forEach(function(item) {
        var link = item.querySelector("a");
        if (!link) return;
        var hit = !query ||
          link.textContent.toLowerCase().indexOf(query) !== -1 ||
          matches[link.getAttribute("data-source")];
        item.classList.toggle("hidden", !hit);
      });
      Array.from(tree.querySelectorAll(".dir")).reverse().forEach(function(dir) {
        var visible = dir.querySelectorAll("li.file:not(.hidden)").length > 0;
        dir.classList.toggle("hidden", !visible);
        if (query && visible) dir.classList.add("expanded");
      });
    });
  }

  // ===== Chat: section collapse =====
  var GLYPH_EXPANDED = "▼";
  var GLYPH_COLLAPSED = "►";

  function sectionFor(header) {
    return document.getElementById(header.id.replace("header-", "section-"));
  }

  function setExpanded(header, expanded) {
    var toggle = header.querySelector(".section-toggle");
    var section = sectionFor(header);
    if (!toggle || !section) return false;
    toggle.setAttribute("aria-expanded", expanded ? "true" : "false");
    section.style.display = expanded ? "block" : "none";
    toggle.textContent = expanded ? GLYPH_EXPANDED : GLYPH_COLLAPSED;
    return true;
  }

  // ===== Chat: selection =====
  var INTERACTIVE = "a, button, pre, .code-header, .language-tag, .section-toggle";
  var selected = null;

  function clearSelection() {
    if (selected) {
      selected.classList.remove("selected");
      selected = null;
    }
  }

  function onDocumentClick(e) {
    var message = e.target.closest(".message");
    if (!message) {
      clearSelection();
      return;
    }
    var hit = e.target.closest(INTERACTIVE);
    if (hit && message.contains(hit)) return;
    if (message.getAttribute("data-speaker") === "direct-text") return;
    if (message === selected) {
      clearSelection();
      return;
    }
    clearSelection();
    message.classList.add("selected");
    selected = message;
  }

  var initialized = false;
  function initChat() {
    if (initialized) return;
    initialized = true;

    document.querySelectorAll(".chat-section-header").forEach(function(header) {
      var toggle = header.querySelector(".section-toggle");
      if (!toggle) return;
      toggle.addEventListener("click", function() {
        setExpanded(header, toggle.getAttribute("aria-expanded") === "false");
      });
    });

    document.querySelectorAll(".message.selected").forEach(function(m) {
      if (selected) m.classList.remove("selected"); else selected = m;
    });
    document.addEventListener("click", onDocumentClick);

    function setAll(expanded) {
      document.querySelectorAll(".chat-section-header").forEach(function(header) {
        setExpanded(header, expanded);
      });
    }
    var collapseAll = document.getElementById("collapse-all");
    var expandAll = document.getElementById("expand-all");
    if (collapseAll) collapseAll.addEventListener("click", function() { setAll(false); });
    if (expandAll) expandAll.addEventListener("click", function() { setAll(true); });
  }

  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", initChat);
  } else {
    initChat();
  }

  // ===== Live reload =====
  // Directory pages reload on any change; transcript pages on their own.
  var liveURL = document.body.getAttribute("data-live");
  if (liveURL && window.WebSocket) {
    var source = document.body.getAttribute("data-source") || "";
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var socket = new WebSocket(proto + location.host + liveURL);
    socket.onmessage = function(msg) {
      var ev;
      try { ev = JSON.parse(msg.data); } catch (e) { return; }
      if (!source || ev.path === source) location.reload();
    };
  }
})();
`
