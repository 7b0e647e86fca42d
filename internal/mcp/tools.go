package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listTranscriptsTool defines the list_transcripts MCP tool.
var listTranscriptsTool = mcp.NewTool("list_transcripts",
	mcp.WithDescription("List the chat transcripts available, with their titles and message counts."),
	mcp.WithString("dir",
		mcp.Description("Only list transcripts under this directory, relative to the transcripts root"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of transcripts to return (default 50)"),
	),
)

// getTranscriptTool defines the get_transcript MCP tool.
var getTranscriptTool = mcp.NewTool("get_transcript",
	mcp.WithDescription("Get a chat transcript as plain text, grouped into its headed sections."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the transcript relative to the transcripts root"),
	),
	mcp.WithString("speaker",
		mcp.Description("Only include messages from this speaker"),
		mcp.Enum("user", "assistant"),
	),
)

// renderTranscriptTool defines the render_transcript MCP tool.
var renderTranscriptTool = mcp.NewTool("render_transcript",
	mcp.WithDescription("Render a chat transcript to the HTML fragment shown on its page."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the transcript relative to the transcripts root"),
	),
	mcp.WithBoolean("collapsed",
		mcp.Description("Render every section collapsed"),
	),
)
