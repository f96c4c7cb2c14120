package dataset

import (
	cryptorand "crypto/rand"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/go-faker/faker/v4"
)

// generateEpoch anchors generated times so a seed fully determines output.
var generateEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// fakerMu serialises Generate calls; faker keeps its random source in
// package state.
var fakerMu sync.Mutex

// ColumnSpec describes one generated column.
type ColumnSpec struct {
	Name     string
	Type     Type
	Nullable bool
}

// ParseColumnSpecs reads a list like "id:int,name:string,score:float?".
// A trailing "?" marks the column nullable.
func ParseColumnSpecs(s string) ([]ColumnSpec, error) {
	var specs []ColumnSpec
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, typ, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("column %q: expected name:type", part)
		}
		spec := ColumnSpec{Name: strings.TrimSpace(name)}
		typ = strings.TrimSpace(typ)
		if strings.HasSuffix(typ, "?") {
			spec.Nullable = true
			typ = strings.TrimSuffix(typ, "?")
		}
		t, err := ParseType(typ)
		if err != nil {
			return nil, fmt.Errorf("column %q: %v", spec.Name, err)
		}
		spec.Type = t
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no columns given")
	}
	return specs, nil
}

// Generate builds rowCount rows of fake data. An int column named "id" is
// filled with a sequence starting at 1; string columns pick a faker
// generator from hints in the column name. Equal seeds give equal datasets.
func Generate(specs []ColumnSpec, rowCount int, seed int64) (*Dataset, error) {
	fakerMu.Lock()
	defer fakerMu.Unlock()
	faker.SetRandomSource(faker.NewSafeSource(rand.NewSource(seed)))
	faker.SetCryptoSource(rand.New(rand.NewSource(^seed)))
	defer faker.SetCryptoSource(cryptorand.Reader)

	rng := rand.New(rand.NewSource(seed))
	now := generateEpoch

	columns := make([]Column, len(specs))
	for i, s := range specs {
		columns[i] = Column{Name: s.Name, Type: s.Type}
	}

	rows := make([][]any, rowCount)
	for r := range rows {
		row := make([]any, len(specs))
		for c, s := range specs {
			if s.Nullable && rng.Float32() < 0.1 {
				continue
			}
			row[c] = fakeValue(rng, s, r, now)
		}
		rows[r] = row
	}
	return WithTypes(columns, rows)
}

func fakeValue(rng *rand.Rand, s ColumnSpec, rowIndex int, now time.Time) any {
	name := strings.ToLower(s.Name)
	switch s.Type {
	case TypeInt:
		if name == "id" {
			return int64(rowIndex + 1)
		}
		return int64(rng.Intn(1000000) + 1)
	case TypeFloat:
		factor := math.Pow10(2)
		return math.Round(rng.Float64()*1000*factor) / factor
	case TypeBool:
		return rng.Intn(2) == 1
	case TypeTime:
		days := rng.Intn(365 * 5)
		return now.AddDate(0, 0, -days).Add(time.Duration(rng.Intn(24*60)) * time.Minute)
	default:
		switch {
		case strings.Contains(name, "email"):
			return fmt.Sprintf("user%d@example.com", rowIndex+1)
		case strings.Contains(name, "uuid"):
			return faker.UUIDHyphenated()
		case strings.Contains(name, "name"):
			return faker.FirstName() + " " + faker.LastName()
		case strings.Contains(name, "phone"):
			return faker.Phonenumber()
		default:
			return faker.Word()
		}
	}
}
