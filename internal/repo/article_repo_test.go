package repo

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestListArticles_DefaultSort_CommentCounts(t *testing.T) {
	db := newSeededDB(t)
	ctx := context.Background()

	got, err := ListArticles(ctx, db, ArticleQuery{SortBy: "created_at", Order: "DESC"})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 articles, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("articles not sorted by created_at desc at %d", i)
		}
	}
	counts := map[int64]int{}
	for _, a := range got {
		counts[a.ArticleID] = a.CommentCount
	}
	want := map[int64]int{1: 4, 2: 0, 3: 1, 4: 1, 5: 1, 6: 0}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("comment counts = %v, want %v", counts, want)
	}
}

func TestListArticles_SortKeysAndTopicFilter(t *testing.T) {
	db := newSeededDB(t)
	ctx := context.Background()

	asc, err := ListArticles(ctx, db, ArticleQuery{SortBy: "comment_count", Order: "ASC"})
	if err != nil {
		t.Fatalf("ListArticles: %v", err)
	}
	for i := 1; i < len(asc); i++ {
		prev, cur := asc[i-1], asc[i]
		if cur.CommentCount < prev.CommentCount {
			t.Fatalf("comment_count not ascending at %d", i)
		}
		if cur.CommentCount == prev.CommentCount && cur.ArticleID < prev.ArticleID {
			t.Fatalf("tie-break by article_id not applied at %d", i)
		}
	}

	byTitle, err := ListArticles(ctx, db, ArticleQuery{SortBy: "title", Order: "asc"})
	if err != nil {
		t.Fatalf("ListArticles(title): %v", err)
	}
	if byTitle[0].Title != "A" {
		t.Fatalf("expected title A first, got %q", byTitle[0].Title)
	}

	cats, err := ListArticles(ctx, db, ArticleQuery{SortBy: "votes", Order: "DESC", Topic: "cats"})
	if err != nil {
		t.Fatalf("ListArticles(cats): %v", err)
	}
	if len(cats) != 1 || cats[0].Topic != "cats" {
		t.Fatalf("topic filter failed: %+v", cats)
	}

	for _, topic := range []string{"paper", "not-a-topic", "mitch' OR 1=1 --"} {
		rows, err := ListArticles(ctx, db, ArticleQuery{SortBy: "created_at", Order: "DESC", Topic: topic})
		if err != nil {
			t.Fatalf("ListArticles(%q): %v", topic, err)
		}
		if rows == nil || len(rows) != 0 {
			t.Fatalf("topic %q should yield an empty non-nil slice, got %v", topic, rows)
		}
	}
}

func TestArticleQuery_RejectsUnknownIdentifiers(t *testing.T) {
	db := newSeededDB(t)
	if _, err := (ArticleQuery{SortBy: "body; DROP TABLE articles", Order: "DESC"}).Apply(db); err == nil {
		t.Fatalf("expected error for unknown sort column")
	}
	if _, err := (ArticleQuery{SortBy: "votes", Order: "sideways"}).Apply(db); err == nil {
		t.Fatalf("expected error for unknown order")
	}
}

func TestGetArticle_FoundNotFoundAndInvalidID(t *testing.T) {
	db := newSeededDB(t)
	ctx := context.Background()

	a, err := GetArticle(ctx, db, "1")
	if err != nil {
		t.Fatalf("GetArticle(1): %v", err)
	}
	if a.ArticleID != 1 || a.Body == "" || a.CommentCount != 4 || a.Votes != 100 {
		t.Fatalf("unexpected article: %+v", a)
	}

	if _, err := GetArticle(ctx, db, "999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := GetArticle(ctx, db, "invalidId"); !HasCode(err, CodeInvalidTextRepresentation) {
		t.Fatalf("expected invalid text representation, got %v", err)
	}
}

func TestIncrementArticleVotes(t *testing.T) {
	db := newSeededDB(t)
	ctx := context.Background()

	up, err := IncrementArticleVotes(ctx, db, "1", 4)
	if err != nil {
		t.Fatalf("IncrementArticleVotes: %v", err)
	}
	if up.Votes != 104 || up.CommentCount != 4 {
		t.Fatalf("expected votes 104 with comment_count 4, got %+v", up)
	}
	down, err := IncrementArticleVotes(ctx, db, "1", -200)
	if err != nil {
		t.Fatalf("IncrementArticleVotes(neg): %v", err)
	}
	if down.Votes != -96 {
		t.Fatalf("negative tallies are allowed; expected -96, got %d", down.Votes)
	}
	same, err := IncrementArticleVotes(ctx, db, "2", 0)
	if err != nil || same.Votes != 0 {
		t.Fatalf("zero delta should succeed unchanged: %+v err=%v", same, err)
	}

	if _, err := IncrementArticleVotes(ctx, db, "999", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := IncrementArticleVotes(ctx, db, "one", 1); !HasCode(err, CodeInvalidTextRepresentation) {
		t.Fatalf("expected invalid id code, got %v", err)
	}
}

func TestIncrementArticleVotes_RejectsTallyOutsideInt32(t *testing.T) {
	db := newSeededDB(t)
	ctx := context.Background()

	top, err := IncrementArticleVotes(ctx, db, "1", math.MaxInt32-100)
	if err != nil || top.Votes != math.MaxInt32 {
		t.Fatalf("raise to max int32: %+v err=%v", top, err)
	}
	if _, err := IncrementArticleVotes(ctx, db, "1", 1); !HasCode(err, CodeNumericOutOfRange) {
		t.Fatalf("expected numeric out of range, got %v", err)
	}
	if _, err := IncrementArticleVotes(ctx, db, "2", math.MinInt32); err != nil {
		t.Fatalf("lower to min int32: %v", err)
	}
	if _, err := IncrementArticleVotes(ctx, db, "2", -1); !HasCode(err, CodeNumericOutOfRange) {
		t.Fatalf("expected numeric out of range below min, got %v", err)
	}
	if _, err := IncrementArticleVotes(ctx, db, "999", math.MaxInt32); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing article must stay ErrNotFound, got %v", err)
	}

	// The rejected update left the row readable with its last good tally.
	a, err := GetArticle(ctx, db, "1")
	if err != nil || a.Votes != math.MaxInt32 {
		t.Fatalf("article 1 after rejected update: %+v err=%v", a, err)
	}
	if _, err := ListArticles(ctx, db, ArticleQuery{SortBy: "votes", Order: "DESC"}); err != nil {
		t.Fatalf("listing after rejected update: %v", err)
	}
}

func TestArticleExists(t *testing.T) {
	db := newSeededDB(t)
	ctx := context.Background()

	if id, err := ArticleExists(ctx, db, "3"); err != nil || id != 3 {
		t.Fatalf("ArticleExists(3) = %d, %v", id, err)
	}
	if _, err := ArticleExists(ctx, db, "77"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := ArticleExists(ctx, db, "3.5"); !HasCode(err, CodeInvalidTextRepresentation) {
		t.Fatalf("expected invalid id code, got %v", err)
	}
}
