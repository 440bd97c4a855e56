package handler

import (
	"errors"
	"strconv"
	"strings"
)

var (
	errRangeMalformed     = errors.New("malformed range header")
	errRangeUnsatisfiable = errors.New("range not satisfiable")
)

// parseRange resolves a Range header against a blob of the given size and
// returns the inclusive byte span to serve. Only single byte ranges are
// supported; a multi-range request is malformed here. The three accepted
// forms are "bytes=a-b", "bytes=a-" and the suffix form "bytes=-n".
func parseRange(header string, size int64) (int64, int64, error) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return 0, 0, errRangeMalformed
	}
	if size == 0 {
		return 0, 0, errRangeUnsatisfiable
	}

	spec := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if strings.Contains(spec, ",") {
		return 0, 0, errRangeMalformed
	}

	dash := strings.Index(spec, "-")
	if dash < 0 {
		return 0, 0, errRangeMalformed
	}

	startPart := strings.TrimSpace(spec[:dash])
	endPart := strings.TrimSpace(spec[dash+1:])

	if startPart == "" {
		// suffix form: the last n bytes
		n, err := strconv.ParseInt(endPart, 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, errRangeMalformed
		}
		if n >= size {
			return 0, size - 1, nil
		}
		return size - n, size - 1, nil
	}

	start, err := strconv.ParseInt(startPart, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, errRangeMalformed
	}
	if start >= size {
		return 0, 0, errRangeUnsatisfiable
	}

	end := size - 1
	if endPart != "" {
		end, err = strconv.ParseInt(endPart, 10, 64)
		if err != nil || end < start {
			return 0, 0, errRangeMalformed
		}
		if end >= size {
			end = size - 1
		}
	}

	return start, end, nil
}
