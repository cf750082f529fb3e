package service

import (
	"sort"

	"github.com/kikuchimkt-afk/ECC-Junior-bulletin-board2/internal/model"
)

// MonthGroup 同一年月的公告，Items 按日降序
type MonthGroup struct {
	Year  int
	Month int
	Items []model.Announcement
}

// DefaultSchoolFilter 会话开始时的教室筛选初始值
// 仅“有所属教室的学生”默认筛选自己的教室，讲师与管理员不筛选
func DefaultSchoolFilter(session *model.Session) model.SchoolSet {
	if session == nil || session.Role.Kind != model.RoleStudent || len(session.Role.Schools) == 0 {
		return nil
	}
	return model.NewSchoolSet(session.Role.Schools...)
}

// FilterBySchools 保留在 filter 下可见的公告，保持原顺序
func FilterBySchools(items []model.Announcement, filter model.SchoolSet) []model.Announcement {
	out := make([]model.Announcement, 0, len(items))
	for i := range items {
		if items[i].VisibleTo(filter) {
			out = append(out, items[i])
		}
	}
	return out
}

// SortNewestFirst 按日期降序稳定排序（原地）
func SortNewestFirst(items []model.Announcement) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DateKey() > items[j].DateKey()
	})
}

// BuildView 过滤并按年月分组
//
// 分组按 (year, month) 严格降序；组内按 day 降序，同日保持输入顺序。
// 结果为空时返回空切片而非 nil。
func BuildView(items []model.Announcement, filter model.SchoolSet) []MonthGroup {
	visible := FilterBySchools(items, filter)
	groups := make([]MonthGroup, 0)
	if len(visible) == 0 {
		return groups
	}

	index := make(map[int]int)
	for _, a := range visible {
		key := a.Year*100 + a.Month
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, MonthGroup{Year: a.Year, Month: a.Month})
		}
		groups[gi].Items = append(groups[gi].Items, a)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Year != groups[j].Year {
			return groups[i].Year > groups[j].Year
		}
		return groups[i].Month > groups[j].Month
	})
	for gi := range groups {
		items := groups[gi].Items
		sort.SliceStable(items, func(i, j int) bool { return items[i].Day > items[j].Day })
	}
	return groups
}
