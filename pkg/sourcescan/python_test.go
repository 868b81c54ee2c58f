// SPDX-License-Identifier: MPL-2.0

package sourcescan

import (
	"errors"
	"reflect"
	"testing"
)

func TestPythonCheckValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{name: "empty", src: ""},
		{name: "comments only", src: "# just a comment\n\n   # indented comment\n"},
		{
			name: "function and class",
			src: `import sys

class Wrapper:
    """Docstring with 'quotes' and "more quotes"."""

    def run(self, argv):
        if not argv:
            return 1
        for arg in argv:
            print(arg)
        return 0


def main():
    return Wrapper().run(sys.argv[1:])


if __name__ == "__main__":
    raise SystemExit(main())
`,
		},
		{
			name: "bracket continuation ignores indentation",
			src: `payload = {
        "a": 1,
  "b": [1,
2, 3],
}
`,
		},
		{name: "backslash continuation", src: "total = 1 + \\\n        2\n"},
		{name: "string prefixes", src: "a = r'\\d+'\nb = b\"bytes\"\nc = f'{a}'\nd = rb'x'\n"},
		{name: "escaped quote", src: "s = 'it\\'s fine'\n"},
		{name: "triple quoted across lines", src: "doc = '''\nline one\n  line two\n'''\nx = 1\n"},
		{name: "walrus", src: "if (n := 10) > 5:\n    pass\n"},
		{name: "inline block", src: "if True: pass\nx = 1\n"},
		{name: "tabs", src: "if True:\n\tx = 1\n\ty = 2\n"},
		{name: "crlf", src: "if True:\r\n    x = 1\r\n"},
		{name: "no trailing newline", src: "x = 1"},
		{name: "dedent to outer level", src: "if a:\n    if b:\n        c()\nd()\n"},
		{name: "print call", src: "print('hi')\nprint(\"a\", end='')\n"},
		{name: "decorators and async", src: "@cache\nasync def f():\n    await g()\n"},
		{name: "slices and lambdas", src: "f = lambda: x[1:2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := (PythonChecker{}).Check("main.py", []byte(tt.src)); err != nil {
				t.Errorf("Check() error = %v", err)
			}
		})
	}
}

func TestPythonCheckErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "unclosed paren",
			src:      "x = 1\nprint('hi'\n",
			wantLine: 2,
			wantMsg:  "'(' was never closed",
		},
		{
			name:     "unmatched close",
			src:      "x = 1)\n",
			wantLine: 1,
			wantMsg:  "unmatched ')'",
		},
		{
			name:     "mismatched close",
			src:      "x = (1]\n",
			wantLine: 1,
			wantMsg:  "closing parenthesis ']' does not match opening parenthesis '('",
		},
		{
			name:     "mismatched close on later line",
			src:      "x = (1,\n2]\n",
			wantLine: 2,
			wantMsg:  "closing parenthesis ']' does not match opening parenthesis '(' on line 1",
		},
		{
			name:     "unterminated string",
			src:      "x = 'abc\ny = 2\n",
			wantLine: 1,
			wantMsg:  "unterminated string literal (detected at line 1)",
		},
		{
			name:     "unterminated triple quoted string",
			src:      "x = \"\"\"abc\ny = 2\n",
			wantLine: 1,
			wantMsg:  "unterminated triple-quoted string literal (detected at line 3)",
		},
		{
			name:     "unexpected indent",
			src:      "x = 1\n    y = 2\n",
			wantLine: 2,
			wantMsg:  "unexpected indent",
		},
		{
			name:     "bad dedent",
			src:      "if x:\n        a()\n    b()\n",
			wantLine: 3,
			wantMsg:  "unindent does not match any outer indentation level",
		},
		{
			name:     "missing block",
			src:      "def f():\nreturn 1\n",
			wantLine: 2,
			wantMsg:  "expected an indented block",
		},
		{
			name:     "missing block at end of file",
			src:      "def f():\n",
			wantLine: 2,
			wantMsg:  "expected an indented block",
		},
		{
			name:     "text after continuation",
			src:      "x = 1 \\ 2\n",
			wantLine: 1,
			wantMsg:  "unexpected character after line continuation character",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := (PythonChecker{}).Check("main.py", []byte(tt.src))
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Check() error = %v, want *SyntaxError", err)
			}
			if se.File != "main.py" {
				t.Errorf("File = %q, want %q", se.File, "main.py")
			}
			if se.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", se.Line, tt.wantLine)
			}
			if se.Msg != tt.wantMsg {
				t.Errorf("Msg = %q, want %q", se.Msg, tt.wantMsg)
			}
		})
	}
}

func TestPythonCheckGrammarErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		wantLine int
		wantMsg  string
	}{
		{name: "doubled operator", src: "x = = 1\n", wantLine: 1, wantMsg: "invalid syntax"},
		{name: "doubled operator after valid lines", src: "import os\n\nx = = 1\n", wantLine: 3, wantMsg: "invalid syntax"},
		{name: "python 2 print", src: "print \"hi\"\n", wantLine: 1, wantMsg: "Missing parentheses in call to 'print'"},
		{name: "missing comma in parameters", src: "def f(x y):\n    return x\n", wantLine: 1, wantMsg: "invalid syntax"},
		{name: "repeated keyword", src: "import requests\nreturn return\n", wantLine: 2, wantMsg: "invalid syntax"},
		{name: "doubled comma in call", src: "f(1,, 2)\n", wantLine: 1, wantMsg: "invalid syntax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := (PythonChecker{}).Check("main.py", []byte(tt.src))
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Check() error = %v, want *SyntaxError", err)
			}
			if se.File != "main.py" || se.Line != tt.wantLine || se.Msg != tt.wantMsg {
				t.Errorf("Check() = %+v, want line %d %q", se, tt.wantLine, tt.wantMsg)
			}

			if _, err := (PythonChecker{}).Imports("main.py", []byte(tt.src)); err == nil {
				t.Error("Imports() error = nil, want syntax error")
			}
		})
	}
}

func TestPythonImports(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{name: "none", src: "print('hi')\n", want: []string{}},
		{name: "plain", src: "import requests\n", want: []string{"requests"}},
		{name: "dotted", src: "import os.path\n", want: []string{"os"}},
		{name: "aliased list", src: "import numpy as np, pandas as pd\n", want: []string{"numpy", "pandas"}},
		{name: "from", src: "from httpx import Client\n", want: []string{"httpx"}},
		{name: "from dotted", src: "from mcp.server import Server\n", want: []string{"mcp"}},
		{name: "relative package", src: "from .helpers import util\n", want: []string{"helpers"}},
		{name: "relative current", src: "from . import util\n", want: []string{}},
		{name: "parenthesized names", src: "from typing import (\n    Any,\n    Dict,\n)\n", want: []string{"typing"}},
		{
			name: "nested in function",
			src:  "def f():\n    import json\n    return json\n",
			want: []string{"json"},
		},
		{
			name: "try block",
			src:  "try:\n    import requests\nexcept ImportError:\n    requests = None\n",
			want: []string{"requests"},
		},
		{name: "semicolons", src: "import os; import sys\n", want: []string{"os", "sys"}},
		{name: "inline compound", src: "if True: import yaml\n", want: []string{"yaml"}},
		{name: "mentions in strings ignored", src: "x = 'import requests'\n# import numpy\n", want: []string{}},
		{name: "future", src: "from __future__ import annotations\nimport attr\n", want: []string{"__future__", "attr"}},
		{name: "relative dotted package", src: "from ..lib.http import get\n", want: []string{"lib"}},
		{name: "attribute named import ignored", src: "importlib.import_module('x')\n", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set, err := (PythonChecker{}).Imports("main.py", []byte(tt.src))
			if err != nil {
				t.Fatalf("Imports() error = %v", err)
			}
			got := set.Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Imports() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPythonImportsSyntaxError(t *testing.T) {
	t.Parallel()

	if _, err := (PythonChecker{}).Imports("bad.py", []byte("import (\n")); err == nil {
		t.Error("Imports() error = nil, want syntax error")
	}
}
