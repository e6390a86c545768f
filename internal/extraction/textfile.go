package extraction

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"reclaim/internal/services"
)

// readTextHead reads up to limit lines from a plain text file.
func readTextHead(path string, limit int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "extraction", "text",
			fmt.Sprintf("opening %s", path), err)
	}
	defer f.Close()

	var sb strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 0; i < limit && scanner.Scan(); i++ {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil && sb.Len() == 0 {
		return "", services.Wrap(services.ErrValidation, "extraction", "text",
			fmt.Sprintf("reading %s", path), err)
	}
	return sb.String(), nil
}

// readMailbox reads the head of an mbox file, hoisting Subject and Date
// headers to the front so inference sees them before the body.
func readMailbox(path string, limit int) (string, error) {
	text, err := readTextHead(path, limit)
	if err != nil {
		return "", err
	}

	var headers, body []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Subject:"):
			headers = append(headers, strings.TrimSpace(strings.TrimPrefix(trimmed, "Subject:")))
		case strings.HasPrefix(trimmed, "Date:"):
			headers = append(headers, "Date: "+strings.TrimSpace(strings.TrimPrefix(trimmed, "Date:")))
		default:
			body = append(body, line)
		}
	}
	return strings.Join(append(headers, body...), "\n"), nil
}
