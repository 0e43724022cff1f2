package recorder

import (
	"bufio"
	"os"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"main/internal/schema"
)

const maxLineSize = 1 << 20

// ReadFile loads every event from a JSONL journal file in order.
func ReadFile(path string) ([]schema.Event, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	defer file.Close()

	var events []schema.Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev schema.Event
		if err := sonic.Unmarshal(raw, &ev); err != nil {
			return nil, errors.Wrapf(err, "decode journal line %d", line)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan journal")
	}
	return events, nil
}
