package chunk

// defaultSeparators is the generic boundary list for unknown extensions:
// blank line, newline, space, then arbitrary position.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// languageSeparators maps a file extension to its ordered boundary markers,
// coarsest first. Every list ends with the generic tail so splitting always
// terminates.
var languageSeparators = map[string][]string{
	".py":   {"\nclass ", "\ndef ", "\nasync def ", "\n\n", "\n", " ", ""},
	".js":   {"\nfunction ", "\nclass ", "\nconst ", "\nlet ", "\nvar ", "\n\n", "\n", " ", ""},
	".jsx":  {"\nexport function ", "\nexport default ", "\nfunction ", "\nconst ", "\n\n", "\n", " ", ""},
	".ts":   {"\ninterface ", "\ntype ", "\nclass ", "\nfunction ", "\nconst ", "\n\n", "\n", " ", ""},
	".tsx":  {"\nexport function ", "\nexport default ", "\ninterface ", "\ntype ", "\n\n", "\n", " ", ""},
	".java": {"\npublic class ", "\nprivate class ", "\nprotected class ", "\npublic static ", "\npublic void ", "\n\n", "\n", " ", ""},
	".cpp":  {"\nclass ", "\nstruct ", "\nnamespace ", "\nvoid ", "\nint ", "\n\n", "\n", " ", ""},
	".c":    {"\nstruct ", "\nvoid ", "\nint ", "\n\n", "\n", " ", ""},
	".go":   {"\nfunc ", "\ntype ", "\nvar ", "\nconst ", "\n\n", "\n", " ", ""},
	".rs":   {"\nfn ", "\nstruct ", "\nimpl ", "\nenum ", "\ntrait ", "\n\n", "\n", " ", ""},
	".php":  {"\nclass ", "\nfunction ", "\npublic function ", "\nprivate function ", "\n\n", "\n", " ", ""},
	".rb":   {"\nclass ", "\ndef ", "\nmodule ", "\n\n", "\n", " ", ""},
	".md":   {"\n# ", "\n## ", "\n### ", "\n\n", "\n", " ", ""},
	".sql":  {"\nCREATE ", "\nSELECT ", "\nINSERT ", "\nUPDATE ", "\nDELETE ", "\n\n", "\n", " ", ""},
	".html": {"\n<div", "\n<section", "\n<article", "\n<header", "\n<footer", "\n\n", "\n", " ", ""},
	".css":  {"\n.", "\n#", "\n@media", "\n@import", "\n\n", "\n", " ", ""},
	".yaml": {"\n- ", "\n  ", "\n", " ", ""},
	".yml":  {"\n- ", "\n  ", "\n", " ", ""},
	".json": {"\n  \"", "\n    \"", "\n", " ", ""},
}

// SeparatorsFor returns the boundary marker list for an extension, falling
// back to the generic list.
func SeparatorsFor(ext string) []string {
	if seps, ok := languageSeparators[ext]; ok {
		return seps
	}
	return defaultSeparators
}

// languageTags maps extensions to the language tag used on fenced code
// blocks in prompts and display.
var languageTags = map[string]string{
	".py": "python", ".js": "javascript", ".jsx": "javascript",
	".ts": "typescript", ".tsx": "typescript", ".java": "java",
	".cpp": "cpp", ".c": "c", ".h": "c", ".hpp": "cpp",
	".cs": "csharp", ".php": "php", ".rb": "ruby", ".go": "go",
	".rs": "rust", ".scala": "scala", ".kt": "kotlin", ".swift": "swift",
	".r": "r", ".sql": "sql", ".md": "markdown", ".html": "html",
	".css": "css", ".sh": "bash", ".yml": "yaml", ".yaml": "yaml",
	".json": "json", ".xml": "xml", ".vue": "vue",
}

// LanguageTag returns the fenced-block language tag for an extension,
// defaulting to "text".
func LanguageTag(ext string) string {
	if tag, ok := languageTags[ext]; ok {
		return tag
	}
	return "text"
}
