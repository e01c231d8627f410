package catalog_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/catalog"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

// fakeRows serves fixed string rows through the pgx.Rows interface.
type fakeRows struct {
	data    [][]string
	pos     int
	scanErr error
	closed  bool
}

func (r *fakeRows) Close() {
	r.closed = true
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	return nil
}

func (r *fakeRows) RawValues() [][]byte {
	return nil
}

func (r *fakeRows) Conn() *pgx.Conn {
	return nil
}

func (r *fakeRows) Next() bool {
	if r.closed || r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		p, ok := d.(*string)
		if !ok {
			return fmt.Errorf("destination %d is %T", i, d)
		}
		*p = row[i]
	}
	return nil
}

func (r *fakeRows) Values() ([]any, error) {
	row := r.data[r.pos-1]
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out, nil
}

type mockQuerier struct {
	queryFn   func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	callCount int
	lastSQL   string
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	m.callCount++
	m.lastSQL = sql
	return m.queryFn(ctx, sql, args...)
}

var _ = Describe("PostgresSource", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("reads catalog rows in curated order", func() {
		rows := &fakeRows{data: [][]string{
			{"Field Guide to Birds", "Book", "Birds of the east.", "birds, nature", "", "https://www.amazon.com/dp/B000123/"},
			{"Garden Songs", "Music", "Songs to hum.", "gardening, music", "https://img.example/g.jpg", ""},
		}}
		querier := &mockQuerier{queryFn: func(context.Context, string, ...any) (pgx.Rows, error) {
			return rows, nil
		}}
		source := catalog.NewPostgresSource(querier)

		got, err := source.Fetch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(source.Name()).To(Equal("postgres"))
		Expect(querier.callCount).To(Equal(1))
		Expect(querier.lastSQL).To(ContainSubstring("FROM catalog_items"))
		Expect(querier.lastSQL).To(ContainSubstring("ORDER BY position, title"))
		Expect(rows.closed).To(BeTrue())

		Expect(got).To(Equal([]model.RawRow{
			{Title: "Field Guide to Birds", Type: "Book", Summary: "Birds of the east.", Tags: "birds, nature", URL: "https://www.amazon.com/dp/B000123/"},
			{Title: "Garden Songs", Type: "Music", Summary: "Songs to hum.", Tags: "gardening, music", Image: "https://img.example/g.jpg"},
		}))
	})

	It("wraps query errors", func() {
		querier := &mockQuerier{queryFn: func(context.Context, string, ...any) (pgx.Rows, error) {
			return nil, errors.New("connection refused")
		}}

		_, err := catalog.NewPostgresSource(querier).Fetch(ctx)
		Expect(err).To(MatchError(ContainSubstring("querying catalog items: connection refused")))
	})

	It("wraps scan errors", func() {
		querier := &mockQuerier{queryFn: func(context.Context, string, ...any) (pgx.Rows, error) {
			return &fakeRows{data: [][]string{{"x"}}, scanErr: errors.New("bad column")}, nil
		}}

		_, err := catalog.NewPostgresSource(querier).Fetch(ctx)
		Expect(err).To(MatchError(ContainSubstring("scanning catalog items: bad column")))
	})
})
