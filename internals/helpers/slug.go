package helper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/lib/pq"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const defaultSlugLen = 80

var (
	reSlugJunk = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify: "Tim Pemasaran Éksternal" → "tim-pemasaran-eksternal".
// Hasil kosong diganti fallback.
func Slugify(s string, maxLen int, fallback string) string {
	if maxLen <= 0 {
		maxLen = defaultSlugLen
	}
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(strings.TrimSpace(s))) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.Trim(reSlugJunk.ReplaceAllString(b.String(), "-"), "-")
	if len(out) > maxLen {
		out = strings.TrimRight(out[:maxLen], "-")
	}
	if out == "" {
		return fallback
	}
	return out
}

// EnsureUniqueSlugCI mencari slug bebas (case-insensitive) di table.column.
// Kandidat: base, base-2, base-3, ... Semua slug yang berawalan base diambil
// sekali, lalu dipilih suffix terkecil yang belum dipakai.
// scope boleh nil, mis. func(q *gorm.DB) *gorm.DB { return q.Where("team_organization_id = ?", orgID) }
func EnsureUniqueSlugCI(
	ctx context.Context,
	db *gorm.DB,
	table, column, base string,
	scope func(*gorm.DB) *gorm.DB,
	maxLen int,
) (string, error) {
	if maxLen <= 0 {
		maxLen = defaultSlugLen
	}
	base = strings.ToLower(base)
	col := pq.QuoteIdentifier(column)

	q := db.WithContext(ctx).Table(table).
		Where(fmt.Sprintf("LOWER(%s) LIKE ?", col), base+"%")
	if scope != nil {
		q = scope(q)
	}
	var taken []string
	if err := q.Pluck(fmt.Sprintf("LOWER(%s)", col), &taken).Error; err != nil {
		return "", err
	}

	used := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		used[s] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base, nil
	}
	for n := 2; n < len(taken)+3; n++ {
		suffix := "-" + strconv.Itoa(n)
		cand := withSuffix(base, suffix, maxLen)
		if _, ok := used[cand]; !ok {
			return cand, nil
		}
	}
	return "", fmt.Errorf("slug %q: tidak menemukan suffix bebas", base)
}

// withSuffix memotong base supaya base+suffix muat di maxLen.
func withSuffix(base, suffix string, maxLen int) string {
	keep := maxLen - len(suffix)
	if keep < 1 {
		keep = 1
	}
	if len(base) > keep {
		base = strings.TrimRight(base[:keep], "-")
	}
	return base + suffix
}
