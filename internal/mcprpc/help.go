package mcprpc

// toolHelp gives search_help something to say about each tool beyond its
// one-line AddTool description, grounded on the teacher's getOperationHelp
// map in internal/mcp/response.go (same "operation name -> prose" shape,
// one entry per tool this engine actually exposes).
var toolHelp = map[string]string{
	"search_grep": "Token-based content search over the inverted index, ranked by TF-IDF. " +
		"terms are OR'd by default; set mode=\"and\" to require every term. With substring search " +
		"enabled (the default), each term matches every vocabulary token containing it, found via the " +
		"trigram index; with substring=false a term matches only the identical token.",
	"search_find": "Recursive filename or content search under dir, with optional regex, case-folding, " +
		"and depth limiting. Stays available while content/definition indexing is still running.",
	"search_fast": "Fast OR-pattern search across file and directory names (comma-separated patterns). " +
		"Use dirsOnly/filesOnly to restrict which kind of entry is returned.",
	"search_info": "Reports index readiness, file/token/definition counts, and the active configuration.",
	"search_reindex": "Forces a full rebuild of the content, definition and file-catalog indices.",
	"search_reindex_definitions": "Forces a full rebuild of the definition index, together with the content and file-catalog indices.",
	"search_definitions": "Look up declared symbols by name, kind, attribute, base type, file, or parent, " +
		"with an optional fuzzy fallback when an exact name misses.",
	"search_callers": "Walk the call graph from a method, either up to its callers or down to its callees, " +
		"with depth and fan-out limits.",
	"search_help": "Lists the available tools, or gives detailed help for one when tool is set.",
}
