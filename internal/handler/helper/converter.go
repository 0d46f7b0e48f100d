package helper

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ScalarToString приводит JSON-скаляр (строку или число) к строке.
// Возвращает false для null, объектов, массивов и булевых значений.
func ScalarToString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		return n.String(), true
	}

	return "", false
}

// ScalarToInt приводит JSON-число или числовую строку к int.
// Дробные и нечисловые значения не принимаются.
func ScalarToInt(raw json.RawMessage) (int, bool) {
	s, ok := ScalarToString(raw)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return v, true
}

// SanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func SanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
