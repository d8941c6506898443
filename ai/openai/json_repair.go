// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

// repairJSON fixes two formatting faults small models commonly produce:
// a key missing its opening quote (`{phrases": [...]}`) and a trailing comma
// before a closing bracket or brace. String contents are left untouched.
func repairJSON(s string) string {
	in := []rune(s)
	out := make([]rune, 0, len(in)+8)
	inString := false

	for i := 0; i < len(in); i++ {
		ch := in[i]

		if inString {
			out = append(out, ch)
			switch ch {
			case '\\':
				if i+1 < len(in) {
					i++
					out = append(out, in[i])
				}
			case '"':
				inString = false
			}
			continue
		}

		switch {
		case ch == '"':
			inString = true
			out = append(out, ch)
		case ch == ',' && closesNext(in, i+1):
			// drop trailing comma
		case isLetter(ch) && afterObjectStart(out):
			// Unquoted key start. Only repair when the key ends in `":`.
			j := i
			for j < len(in) && (isLetter(in[j]) || in[j] == '_') {
				j++
			}
			if j+1 < len(in) && in[j] == '"' && in[j+1] == ':' {
				out = append(out, '"')
				out = append(out, in[i:j]...)
				out = append(out, '"')
				i = j
				continue
			}
			out = append(out, ch)
		default:
			out = append(out, ch)
		}
	}

	return string(out)
}

// closesNext reports whether the next non-space rune at or after i closes
// an array or object.
func closesNext(in []rune, i int) bool {
	for ; i < len(in); i++ {
		switch in[i] {
		case ' ', '\n', '\t', '\r':
			continue
		case ']', '}':
			return true
		default:
			return false
		}
	}
	return false
}

// afterObjectStart reports whether the last non-space rune written opened an
// object or separated its members.
func afterObjectStart(out []rune) bool {
	for i := len(out) - 1; i >= 0; i-- {
		switch out[i] {
		case ' ', '\n', '\t', '\r':
			continue
		case '{', ',':
			return true
		default:
			return false
		}
	}
	return false
}
