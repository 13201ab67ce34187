package cache

import (
	"testing"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subject = dto.SubjectKey{Market: dto.MarketUSStock, Symbol: "AAPL"}

func TestCacheHitAndMiss(t *testing.T) {
	c := New(time.Minute, time.Minute, time.Minute)

	_, ok := c.Get(subject, CategoryPrice)
	assert.False(t, ok)

	c.Put(subject, CategoryPrice, "series")
	got, ok := c.Get(subject, CategoryPrice)
	require.True(t, ok)
	assert.Equal(t, "series", got)
}

func TestCacheCategoriesAreIndependent(t *testing.T) {
	c := New(time.Minute, time.Minute, time.Minute)

	c.Put(subject, CategoryPrice, "price")
	c.Put(subject, CategoryFundamental, "fundamentals")

	_, ok := c.Get(subject, CategoryNews)
	assert.False(t, ok)

	got, ok := c.Get(subject, CategoryFundamental)
	require.True(t, ok)
	assert.Equal(t, "fundamentals", got)
}

func TestCacheSubjectsDoNotCollide(t *testing.T) {
	c := New(time.Minute, time.Minute, time.Minute)
	other := dto.SubjectKey{Market: dto.MarketHKStock, Symbol: "00700"}

	c.Put(subject, CategoryPrice, "aapl")
	c.Put(other, CategoryPrice, "tencent")

	got, ok := c.Get(subject, CategoryPrice)
	require.True(t, ok)
	assert.Equal(t, "aapl", got)

	got, ok = c.Get(other, CategoryPrice)
	require.True(t, ok)
	assert.Equal(t, "tencent", got)
}

func TestCacheExpiryPerCategory(t *testing.T) {
	c := New(20*time.Millisecond, time.Minute, time.Minute)

	c.Put(subject, CategoryPrice, "stale-soon")
	c.Put(subject, CategoryFundamental, "still-fresh")

	time.Sleep(40 * time.Millisecond)

	_, ok := c.Get(subject, CategoryPrice)
	assert.False(t, ok, "price entry should have expired")

	_, ok = c.Get(subject, CategoryFundamental)
	assert.True(t, ok, "fundamental entry should still be fresh")
}

func TestCacheOverwrite(t *testing.T) {
	c := New(time.Minute, time.Minute, time.Minute)

	c.Put(subject, CategoryNews, "old")
	c.Put(subject, CategoryNews, "new")

	got, ok := c.Get(subject, CategoryNews)
	require.True(t, ok)
	assert.Equal(t, "new", got)
}
