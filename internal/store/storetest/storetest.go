// Package storetest 为各存储驱动提供统一的契约测试
package storetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/store"
)

// Run 对 newStore 创建的存储执行全部契约用例，每个子测试使用全新实例
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Document", func(t *testing.T) { testDocument(t, newStore(t)) })
	t.Run("Hash", func(t *testing.T) { testHash(t, newStore(t)) })
	t.Run("ListPushAndRange", func(t *testing.T) { testListPushAndRange(t, newStore(t)) })
	t.Run("ListTrim", func(t *testing.T) { testListTrim(t, newStore(t)) })
	t.Run("ListTrimKeepsNewHead", func(t *testing.T) {
		TrimKeepsConcurrentPush(t, newStore(t), func(push func()) { push() })
	})
	t.Run("ListClear", func(t *testing.T) { testListClear(t, newStore(t)) })
}

func testDocument(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, found, err := s.DocumentGet(ctx, "announcements")
	require.NoError(t, err)
	assert.False(t, found, "不存在的文档应返回 found=false")

	require.NoError(t, s.DocumentSet(ctx, "announcements", `[{"id":1}]`))
	require.NoError(t, s.DocumentSet(ctx, "announcements", `[{"id":2}]`))

	v, found, err := s.DocumentGet(ctx, "announcements")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":2}]`, v, "DocumentSet 应覆盖旧值")
}

func testHash(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, found, err := s.HashGet(ctx, "users", "user001")
	require.NoError(t, err)
	assert.False(t, found)

	all, err := s.HashGetAll(ctx, "users")
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, s.HashSet(ctx, "users", "user001", `{"id":"user001"}`))
	require.NoError(t, s.HashSet(ctx, "users", "admin", `{"id":"admin"}`))
	require.NoError(t, s.HashSet(ctx, "users", "user001", `{"id":"user001","name":"x"}`))

	v, found, err := s.HashGet(ctx, "users", "user001")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"id":"user001","name":"x"}`, v)

	all, err = s.HashGetAll(ctx, "users")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.HashDelete(ctx, "users", "user001"))
	require.NoError(t, s.HashDelete(ctx, "users", "missing"), "删除不存在的字段不应报错")

	_, found, err = s.HashGet(ctx, "users", "user001")
	require.NoError(t, err)
	assert.False(t, found)
}

func testListPushAndRange(t *testing.T, s store.Store) {
	ctx := context.Background()

	empty, err := s.ListRange(ctx, "logs", 0, 9)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.ListPushHead(ctx, "logs", fmt.Sprintf("e%d", i)))
	}

	all, err := s.ListRange(ctx, "logs", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"e5", "e4", "e3", "e2", "e1"}, all, "表头应为最新插入的元素")

	head, err := s.ListRange(ctx, "logs", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"e5", "e4"}, head)

	tail, err := s.ListRange(ctx, "logs", -2, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"e2", "e1"}, tail)

	over, err := s.ListRange(ctx, "logs", 3, 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"e2", "e1"}, over)

	none, err := s.ListRange(ctx, "logs", 10, 20)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testListTrim(t *testing.T, s store.Store) {
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		require.NoError(t, s.ListPushHead(ctx, "logs", fmt.Sprintf("e%d", i)))
	}

	require.NoError(t, s.ListTrim(ctx, "logs", 0, 2))
	kept, err := s.ListRange(ctx, "logs", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"e6", "e5", "e4"}, kept)

	require.NoError(t, s.ListPushHead(ctx, "logs", "e7"))
	require.NoError(t, s.ListTrim(ctx, "logs", 1, -1))
	kept, err = s.ListRange(ctx, "logs", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"e6", "e5", "e4"}, kept)

	require.NoError(t, s.ListTrim(ctx, "logs", 5, 10))
	kept, err = s.ListRange(ctx, "logs", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, kept, "空区间裁剪应清空列表")
}

// TrimKeepsConcurrentPush 裁剪期间写入表头的元素不得丢失。
// arm 负责让 push 在 ListTrim 执行期间发生；整体原子的驱动直接调用 push 即可。
func TrimKeepsConcurrentPush(t *testing.T, s store.Store, arm func(push func())) {
	ctx := context.Background()

	for _, v := range []string{"a", "b", "c"} {
		require.NoError(t, s.ListPushHead(ctx, "logs", v))
	}
	arm(func() {
		require.NoError(t, s.ListPushHead(ctx, "logs", "concurrent-login"))
	})

	require.NoError(t, s.ListTrim(ctx, "logs", 0, 999))
	kept, err := s.ListRange(ctx, "logs", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"concurrent-login", "c", "b", "a"}, kept)
}

func testListClear(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.ListPushHead(ctx, "logs", "a"))
	require.NoError(t, s.ListPushHead(ctx, "logs", "b"))
	require.NoError(t, s.ListClear(ctx, "logs"))
	require.NoError(t, s.ListClear(ctx, "logs"), "重复清空不应报错")

	all, err := s.ListRange(ctx, "logs", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, all)
}
