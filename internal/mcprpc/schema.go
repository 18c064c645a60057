package mcprpc

import "github.com/google/jsonschema-go/jsonschema"

func strProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func boolProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: desc}
}

func intProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: desc}
}

func strArrayProp(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}, Description: desc}
}

func grepSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"terms":      strArrayProp("search terms (OR'd together unless mode=\"and\")"),
			"mode":       strProp("\"or\" (default) or \"and\""),
			"regex":      boolProp("treat each term as a regular expression"),
			"substring":  boolProp("resolve each term to every vocabulary token containing it, via the trigram index; false matches whole tokens only (default true)"),
			"dir":        strProp("restrict the search to this directory, relative to the project root"),
			"ext":        strArrayProp("restrict to these file extensions"),
			"excludeDir": strArrayProp("glob or plain substrings of directories to exclude"),
			"exclude":    strArrayProp("glob or plain substrings of paths to exclude"),
			"maxResults": intProp("cap on returned file matches"),
			"countOnly":  boolProp("return only the match count, no file details"),
		},
		Required: []string{"terms"},
	}
}

func findSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"pattern":    strProp("substring or regex to match against filenames (or contents, see contents)"),
			"dir":        strProp("directory to search under, relative to the project root"),
			"contents":   boolProp("match pattern against file contents instead of filenames"),
			"regex":      boolProp("treat pattern as a regular expression"),
			"ignoreCase": boolProp("case-insensitive matching"),
			"maxDepth":   intProp("maximum directory depth below dir (0 = unlimited)"),
			"countOnly":  boolProp("return only the match count"),
			"ext":        strArrayProp("restrict to these file extensions"),
		},
		Required: []string{"pattern"},
	}
}

func fastSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"pattern":    strProp("comma-separated OR patterns matched against filenames"),
			"dir":        strProp("directory to search under, relative to the project root"),
			"ext":        strArrayProp("restrict to these file extensions"),
			"regex":      boolProp("treat each pattern as a regular expression"),
			"ignoreCase": boolProp("case-insensitive matching"),
			"dirsOnly":   boolProp("match directory names only"),
			"filesOnly":  boolProp("match file names only"),
			"countOnly":  boolProp("return only the match count"),
		},
		Required: []string{"pattern"},
	}
}

func infoSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Properties: map[string]*jsonschema.Schema{}}
}

func reindexSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"full": boolProp("accepted but not read: every call rebuilds all indices in full"),
		},
	}
}

func definitionsSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"name":         strProp("exact symbol name"),
			"kind":         strProp("symbol kind, e.g. class, method, interface, struct"),
			"attribute":    strProp("decorator/attribute name attached to the symbol"),
			"baseType":     strProp("base class or implemented interface name"),
			"file":         strProp("substring filter on the declaring file's path"),
			"parent":       strProp("substring filter on the containing type's name"),
			"excludeDir":   strArrayProp("glob or plain substrings of directories to exclude"),
			"containsLine": intProp("find the definition enclosing this line (requires file)"),
			"maxResults":   intProp("cap on returned definitions"),
			"includeBody":  boolProp("include each definition's source text"),
			"maxBodyLines": intProp("cap lines of body text per definition when includeBody is set"),
			"fuzzyNameFallback": boolProp(
				"when name yields no exact hits, rank near-miss names by similarity instead"),
		},
	}
}

func callersSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"method":             strProp("method or function name to trace"),
			"class":              strProp("containing class/type name, optional"),
			"direction":          strProp("\"up\" for callers (default) or \"down\" for callees"),
			"maxDepth":           intProp("maximum tree depth (default 3, max 10)"),
			"maxCallersPerLevel": intProp("cap on siblings returned per tree level (default 10)"),
			"maxTotalNodes":      intProp("cap on total nodes across the whole tree (default 200)"),
			"resolveInterfaces":  boolProp("at depth 0, also follow interface implementations"),
			"dir":                strProp("restrict results to this directory"),
			"ext":                strArrayProp("restrict to these file extensions"),
			"excludeFile":        strArrayProp("glob or plain substrings of paths to exclude"),
		},
		Required: []string{"method"},
	}
}

func helpSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"tool": strProp("name of a tool to get detailed help for; omit for the tool list"),
		},
	}
}
