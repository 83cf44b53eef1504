// Package statement extracts candidate transactions from bank statement text.
//
// Bank exports are not standardized, so Parse works line by line and never
// fails: a line it cannot interpret is counted and skipped.
package statement

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionUnknown Direction = ""
	DirectionCredit  Direction = "credit"
	DirectionDebit   Direction = "debit"
)

// Transaction is one statement line that carried an amount, a reference
// code, or both.
type Transaction struct {
	Line          int              `json:"line"`
	RawLine       string           `json:"raw_line"`
	Date          *time.Time       `json:"date,omitempty"`
	ReferenceCode string           `json:"reference_code,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Direction     Direction        `json:"direction,omitempty"`
}

// Stats counts non-blank lines. TotalLines = Skipped + Unparsed + Extracted.
type Stats struct {
	TotalLines int `json:"total_lines"`
	Skipped    int `json:"skipped"`
	Unparsed   int `json:"unparsed"`
	Extracted  int `json:"extracted"`
}

type Result struct {
	Transactions []Transaction `json:"transactions"`
	Stats        Stats         `json:"stats"`
}

type Options struct {
	// MinTokens drops header and footer lines with fewer whitespace separated tokens.
	MinTokens int
	// MinReferenceLength is the shortest token accepted as a reference code.
	MinReferenceLength int
}

func DefaultOptions() Options {
	return Options{MinTokens: 2, MinReferenceLength: 6}
}

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	dmyDateRe   = regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})\b`)
	monthDateRe = regexp.MustCompile(`\b(\d{1,2})[- ]([A-Za-z]{3,9})[- ,]+(\d{4})\b`)

	groupedAmountRe = regexp.MustCompile(`^\d{1,3}(,\d{2,3})+(\.\d{1,2})?$`)
	decimalAmountRe = regexp.MustCompile(`^\d+\.\d{1,2}$`)
	plainAmountRe   = regexp.MustCompile(`^\d{1,9}$`)
	referenceRe     = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

var referenceLabels = map[string]struct{}{
	"utr": {}, "utrno": {}, "ref": {}, "refno": {}, "reference": {},
	"txn": {}, "txnid": {}, "txnno": {}, "rrn": {},
}

var labelFillers = map[string]struct{}{
	"no": {}, "id": {}, "number": {}, "num": {},
}

const trimCutset = `,.()[]{}"'*#`

// Parse extracts transactions from text. Page breaks may be form feeds or
// newlines.
func Parse(text string, opts Options) Result {
	if opts.MinTokens <= 0 {
		opts.MinTokens = DefaultOptions().MinTokens
	}
	if opts.MinReferenceLength <= 0 {
		opts.MinReferenceLength = DefaultOptions().MinReferenceLength
	}

	text = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n").Replace(text)

	res := Result{Transactions: []Transaction{}}
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		res.Stats.TotalLines++

		if len(strings.Fields(trimmed)) < opts.MinTokens {
			res.Stats.Skipped++
			continue
		}

		tx, ok := parseLine(trimmed, opts)
		if !ok {
			res.Stats.Unparsed++
			continue
		}
		tx.Line = i + 1
		res.Transactions = append(res.Transactions, tx)
		res.Stats.Extracted++
	}
	return res
}

type token struct {
	text     string
	currency bool
	marker   Direction
}

type amountCandidate struct {
	index     int
	value     decimal.Decimal
	direction Direction
	bound     bool
	strong    bool
}

func parseLine(line string, opts Options) (Transaction, bool) {
	tx := Transaction{RawLine: line}

	date, masked := extractDate(line)
	tx.Date = date

	toks := tokenize(masked)

	amountIdx := -1
	if c, ok := pickAmount(toks); ok {
		amountIdx = c.index
		v := c.value
		tx.Amount = &v
		tx.Direction = c.direction
	}
	if tx.Direction == DirectionUnknown {
		for _, t := range toks {
			if t.marker != DirectionUnknown {
				tx.Direction = t.marker
				break
			}
		}
	}

	refIdx := pickReference(toks, amountIdx, opts.MinReferenceLength)
	if refIdx >= 0 {
		tx.ReferenceCode = toks[refIdx].text
		// A reference line keeps its bare trailing integer so the matcher can
		// still compare amounts.
		if tx.Amount == nil {
			if v, ok := lastPlainAmount(toks, refIdx); ok {
				tx.Amount = &v
			}
		}
	}

	if tx.Amount == nil && tx.ReferenceCode == "" {
		return Transaction{}, false
	}
	return tx, true
}

func tokenize(s string) []token {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '|', ';', '/', ':', '=', '-':
			return true
		}
		return unicode.IsSpace(r)
	})

	toks := make([]token, 0, len(fields))
	pendingCurrency := false
	for _, f := range fields {
		t := strings.Trim(f, trimCutset)
		if t == "" {
			continue
		}
		if isCurrencyWord(t) {
			pendingCurrency = true
			continue
		}
		toks = append(toks, token{text: t, currency: pendingCurrency, marker: markerOf(t)})
		pendingCurrency = false
	}
	return toks
}

func isCurrencyWord(t string) bool {
	switch strings.ToLower(t) {
	case "₹", "inr", "rs":
		return true
	}
	return false
}

func markerOf(t string) Direction {
	switch strings.ToLower(t) {
	case "cr", "credit", "credited", "deposit":
		return DirectionCredit
	case "dr", "debit", "debited", "withdrawal":
		return DirectionDebit
	}
	return DirectionUnknown
}

// pickAmount prefers the last amount bound to a credit/debit marker and
// falls back to the last amount on the line.
func pickAmount(toks []token) (amountCandidate, bool) {
	byIndex := make(map[int]*amountCandidate)
	var order []int
	for i, t := range toks {
		value, suffix, plain, ok := parseAmount(t.text)
		if !ok {
			continue
		}
		byIndex[i] = &amountCandidate{
			index:     i,
			value:     value,
			direction: suffix,
			bound:     suffix != DirectionUnknown,
			strong:    !plain || t.currency || hasCurrencyPrefix(t.text),
		}
		order = append(order, i)
	}

	// A marker binds one neighbour: a strong amount before it, then a strong
	// amount after it, then a bare integer on either side.
	for i, t := range toks {
		if t.marker == DirectionUnknown {
			continue
		}
		prev, next := byIndex[i-1], byIndex[i+1]
		var target *amountCandidate
		switch {
		case prev != nil && !prev.bound && prev.strong:
			target = prev
		case next != nil && !next.bound && next.strong:
			target = next
		case prev != nil && !prev.bound:
			target = prev
		case next != nil && !next.bound:
			target = next
		}
		if target != nil {
			target.bound = true
			target.direction = t.marker
		}
	}

	var candidates []amountCandidate
	for _, i := range order {
		c := byIndex[i]
		if !c.strong && !c.bound {
			continue
		}
		candidates = append(candidates, *c)
	}
	if len(candidates) == 0 {
		return amountCandidate{}, false
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		if candidates[i].bound {
			return candidates[i], true
		}
	}
	return candidates[len(candidates)-1], true
}

func lastPlainAmount(toks []token, refIdx int) (decimal.Decimal, bool) {
	for i := len(toks) - 1; i >= 0; i-- {
		if i == refIdx {
			continue
		}
		if value, _, plain, ok := parseAmount(toks[i].text); ok && plain {
			return value, true
		}
	}
	return decimal.Decimal{}, false
}

// parseAmount reads tokens like "1,500.00", "₹1500", "INR1500.50" and
// "1,500.00Cr". plain is true for bare integers, which only count as
// amounts with a currency or marker next to them.
func parseAmount(s string) (value decimal.Decimal, suffix Direction, plain, ok bool) {
	s = stripCurrency(s)

	lower := strings.ToLower(s)
	if len(s) > 2 {
		switch {
		case strings.HasSuffix(lower, "cr"):
			s, suffix = s[:len(s)-2], DirectionCredit
		case strings.HasSuffix(lower, "dr"):
			s, suffix = s[:len(s)-2], DirectionDebit
		}
		s = strings.TrimRight(s, "(")
	}

	switch {
	case groupedAmountRe.MatchString(s), decimalAmountRe.MatchString(s):
	case plainAmountRe.MatchString(s):
		plain = true
	default:
		return decimal.Decimal{}, DirectionUnknown, false, false
	}

	value, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Decimal{}, DirectionUnknown, false, false
	}
	return value, suffix, plain, true
}

var currencyPrefixes = []string{"₹", "inr", "rs.", "rs"}

func hasCurrencyPrefix(s string) bool {
	return stripCurrency(s) != s
}

func stripCurrency(s string) string {
	lower := strings.ToLower(s)
	for _, p := range currencyPrefixes {
		if strings.HasPrefix(lower, p) && len(s) > len(p) {
			rest := s[len(p):]
			if rest[0] >= '0' && rest[0] <= '9' {
				return rest
			}
		}
	}
	return s
}

// pickReference returns the index of the token that follows a reference
// label, else the longest qualifying token, else -1.
func pickReference(toks []token, amountIdx, minLen int) int {
	qualifies := func(i int) bool {
		if i == amountIdx {
			return false
		}
		t := toks[i].text
		if len(t) < minLen || !referenceRe.MatchString(t) || !strings.ContainsAny(t, "0123456789") {
			return false
		}
		return !isCompactDate(t)
	}

	for i, t := range toks {
		label := strings.ToLower(strings.ReplaceAll(t.text, ".", ""))
		if _, ok := referenceLabels[label]; !ok {
			continue
		}
		j := i + 1
		for j < len(toks) {
			if _, filler := labelFillers[strings.ToLower(strings.ReplaceAll(toks[j].text, ".", ""))]; !filler {
				break
			}
			j++
		}
		if j < len(toks) && qualifies(j) {
			return j
		}
	}

	best := -1
	for i, t := range toks {
		if qualifies(i) && (best < 0 || len(t.text) > len(toks[best].text)) {
			best = i
		}
	}
	return best
}

// isCompactDate reports whether an 8 digit token reads as ddmmyyyy or yyyymmdd.
func isCompactDate(t string) bool {
	if len(t) != 8 {
		return false
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return false
		}
	}
	if _, ok := makeDate(t[4:], t[2:4], t[:2]); ok {
		return true
	}
	_, ok := makeDate(t[:4], t[4:6], t[6:])
	return ok
}

// extractDate returns the first date on the line and the line with every
// recognized date blanked out, so date digits never become amounts or
// references.
func extractDate(line string) (*time.Time, string) {
	masked := []byte(line)
	var first *time.Time
	firstAt := len(line)

	record := func(at, end int, d time.Time) {
		for k := at; k < end; k++ {
			masked[k] = ' '
		}
		if at < firstAt {
			firstAt = at
			dd := d
			first = &dd
		}
	}

	for _, m := range isoDateRe.FindAllStringSubmatchIndex(line, -1) {
		if d, ok := makeDate(line[m[2]:m[3]], line[m[4]:m[5]], line[m[6]:m[7]]); ok {
			record(m[0], m[1], d)
		}
	}
	for _, m := range dmyDateRe.FindAllStringSubmatchIndex(line, -1) {
		if masked[m[0]] == ' ' {
			continue
		}
		if d, ok := makeDate(line[m[6]:m[7]], line[m[4]:m[5]], line[m[2]:m[3]]); ok {
			record(m[0], m[1], d)
		}
	}
	for _, m := range monthDateRe.FindAllStringSubmatchIndex(line, -1) {
		if masked[m[0]] == ' ' {
			continue
		}
		name := strings.ToLower(line[m[4]:m[5]])
		month, ok := months[name[:3]]
		if !ok {
			continue
		}
		if d, ok := makeDate(line[m[6]:m[7]], strconv.Itoa(int(month)), line[m[2]:m[3]]); ok {
			record(m[0], m[1], d)
		}
	}
	return first, string(masked)
}

func makeDate(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if y < 1990 || y > 2100 || m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
