package domain

import "strings"

var starterSnippets = map[string]string{
	"javascript": "// JavaScript\nfunction main() {\n  console.log(\"Hello, World!\");\n}\n\nmain();\n",
	"python":     "# Python\ndef main():\n    print(\"Hello, World!\")\n\n\nif __name__ == \"__main__\":\n    main()\n",
	"html":       "<!DOCTYPE html>\n<html>\n  <head>\n    <title>CodexView</title>\n  </head>\n  <body>\n    <h1>Hello, World!</h1>\n  </body>\n</html>\n",
	"css":        "/* CSS */\nbody {\n  font-family: sans-serif;\n  background: #f0f0f0;\n}\n",
	"cpp":        "// C++\n#include <iostream>\n\nint main() {\n    std::cout << \"Hello, World!\" << std::endl;\n    return 0;\n}\n",
	"java":       "// Java\npublic class Main {\n    public static void main(String[] args) {\n        System.out.println(\"Hello, World!\");\n    }\n}\n",
	"go":         "// Go\npackage main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"Hello, World!\")\n}\n",
	"rust":       "// Rust\nfn main() {\n    println!(\"Hello, World!\");\n}\n",
	"ruby":       "# Ruby\nputs \"Hello, World!\"\n",
	"csharp":     "// C#\nusing System;\n\nclass Program {\n    static void Main() {\n        Console.WriteLine(\"Hello, World!\");\n    }\n}\n",
}

// Welcome texts clients seed their editors with.
var placeholders = []string{
	DefaultContent,
	"// Welcome to CodexView\nconsole.log(\"Hello World\");",
	"// Welcome to CodexView\nconsole.log('Hello World');",
	"// Welcome to CodexView Live Session\n// Start coding here...\n",
}

// StarterSnippet returns the canned starter code for a language tag.
func StarterSnippet(language string) (string, bool) {
	s, ok := starterSnippets[strings.ToLower(language)]
	return s, ok
}

// IsPlaceholder reports whether content is safe to replace on a language
// switch. Blank content and the built-in welcome and starter texts qualify.
func IsPlaceholder(content string) bool {
	if strings.TrimSpace(content) == "" {
		return true
	}
	for _, p := range placeholders {
		if content == p {
			return true
		}
	}
	for _, s := range starterSnippets {
		if content == s {
			return true
		}
	}
	return false
}

// ReplaceableContents lists every non-blank buffer IsPlaceholder accepts.
// Stores that match on the server side use it to build their filter.
func ReplaceableContents() []string {
	out := make([]string, 0, len(placeholders)+len(starterSnippets))
	out = append(out, placeholders...)
	for _, s := range starterSnippets {
		out = append(out, s)
	}
	return out
}
