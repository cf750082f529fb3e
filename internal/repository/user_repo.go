package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/store"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	Save(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
	// List 返回全部用户（按 ID 排序），Password 已清空
	List(ctx context.Context) ([]model.User, error)
	Count(ctx context.Context) (int, error)
}

// userRepo UserRepository 的键值存储实现（哈希表 users）
type userRepo struct {
	s store.Store
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(s store.Store) UserRepository {
	return &userRepo{s: s}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	raw, found, err := r.s.HashGet(ctx, keyUsers, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrRecordNotFound
	}
	var user model.User
	if err := decodeValue(raw, &user); err != nil {
		return nil, fmt.Errorf("用户 %s 数据损坏: %w", id, err)
	}
	if user.ID == "" {
		user.ID = id
	}
	return &user, nil
}

// Save 新建或整体覆盖
func (r *userRepo) Save(ctx context.Context, user *model.User) error {
	raw, err := encodeValue(user)
	if err != nil {
		return err
	}
	return r.s.HashSet(ctx, keyUsers, user.ID, raw)
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return r.s.HashDelete(ctx, keyUsers, id)
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	all, err := r.s.HashGetAll(ctx, keyUsers)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(all))
	for id, raw := range all {
		var u model.User
		if err := decodeValue(raw, &u); err != nil {
			return nil, fmt.Errorf("用户 %s 数据损坏: %w", id, err)
		}
		if u.ID == "" {
			u.ID = id
		}
		u.Password = ""
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	all, err := r.s.HashGetAll(ctx, keyUsers)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}
