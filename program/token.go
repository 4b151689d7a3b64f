package program

import (
	"fmt"
	"regexp"
	"strings"
)

var tokenRe = regexp.MustCompile(`"([^"]*)"|'([^']*)'|(\S+)`)

// Tokenize splits a source line into tokens. A span quoted with double or
// single quotes forms one token without its quotes. Lines with an odd number
// of either quote character are rejected.
func Tokenize(line string) ([]string, error) {
	if strings.Count(line, `'`)%2 != 0 {
		return nil, fmt.Errorf("%w: %q contains an odd number of single-quotes",
			ErrUnbalancedQuotes, line)
	}
	if strings.Count(line, `"`)%2 != 0 {
		return nil, fmt.Errorf("%w: %q contains an odd number of double-quotes",
			ErrUnbalancedQuotes, line)
	}

	matches := tokenRe.FindAllStringSubmatchIndex(line, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		switch {
		case m[2] >= 0:
			tokens = append(tokens, line[m[2]:m[3]])
		case m[4] >= 0:
			tokens = append(tokens, line[m[4]:m[5]])
		default:
			tokens = append(tokens, line[m[6]:m[7]])
		}
	}

	return tokens, nil
}
