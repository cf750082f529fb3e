package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/store"
)

// AnnouncementRepository 公告数据访问接口
//
// 全部公告保存在同一个文档中，写操作均为“读取-修改-写回”，
// 并发写同一文档时后写者覆盖先写者。
type AnnouncementRepository interface {
	List(ctx context.Context) ([]model.Announcement, error)
	GetByID(ctx context.Context, id int64) (*model.Announcement, error)
	Create(ctx context.Context, a *model.Announcement) error
	Update(ctx context.Context, a *model.Announcement) error
	Delete(ctx context.Context, id int64) error
}

// announcementRepo AnnouncementRepository 的键值存储实现
type announcementRepo struct {
	s store.Store
}

// NewAnnouncementRepo 创建 AnnouncementRepository 实例
func NewAnnouncementRepo(s store.Store) AnnouncementRepository {
	return &announcementRepo{s: s}
}

// List 按存储顺序返回全部公告
func (r *announcementRepo) List(ctx context.Context) ([]model.Announcement, error) {
	raw, found, err := r.s.DocumentGet(ctx, keyAnnouncements)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return []model.Announcement{}, nil
	}
	var list []model.Announcement
	if err := decodeValue(raw, &list); err != nil {
		return nil, fmt.Errorf("公告数据损坏: %w", err)
	}
	if list == nil {
		list = []model.Announcement{}
	}
	return list, nil
}

func (r *announcementRepo) GetByID(ctx context.Context, id int64) (*model.Announcement, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

// Create 分配新 ID 并追加
// ID = max(已发放序号, 现存最大 ID) + 1，删除后也不会复用
// 读序号、写序号、保存列表三步不是原子操作，仅顺序创建保证 ID 唯一
func (r *announcementRepo) Create(ctx context.Context, a *model.Announcement) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	seq, err := r.lastIssuedID(ctx)
	if err != nil {
		return err
	}
	for _, existing := range list {
		if existing.ID > seq {
			seq = existing.ID
		}
	}
	a.ID = seq + 1

	if err := r.s.DocumentSet(ctx, keyAnnouncementSeq, strconv.FormatInt(a.ID, 10)); err != nil {
		return err
	}
	return r.save(ctx, append(list, *a))
}

func (r *announcementRepo) Update(ctx context.Context, a *model.Announcement) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == a.ID {
			list[i] = *a
			return r.save(ctx, list)
		}
	}
	return ErrRecordNotFound
}

// Delete 幂等删除，目标不存在时不写回
func (r *announcementRepo) Delete(ctx context.Context, id int64) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, a := range list {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(list) {
		return nil
	}
	return r.save(ctx, kept)
}

func (r *announcementRepo) save(ctx context.Context, list []model.Announcement) error {
	raw, err := encodeValue(list)
	if err != nil {
		return err
	}
	return r.s.DocumentSet(ctx, keyAnnouncements, raw)
}

func (r *announcementRepo) lastIssuedID(ctx context.Context) (int64, error) {
	raw, found, err := r.s.DocumentGet(ctx, keyAnnouncementSeq)
	if err != nil || !found {
		return 0, err
	}
	var seq int64
	if err := decodeValue(raw, &seq); err != nil {
		return 0, fmt.Errorf("公告序号损坏: %w", err)
	}
	return seq, nil
}
