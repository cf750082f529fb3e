package model

import (
	"encoding/json"
	"sort"
	"strings"
)

// SchoolSet 教室标签集合
// 空集合在公告上表示“面向所有人”，在学生账号上表示“不限教室”。
// 序列化时总是输出数组（nil 输出为 []）。
type SchoolSet []string

// NewSchoolSet 去除空白与重复项，保持首次出现的顺序
func NewSchoolSet(ids ...string) SchoolSet {
	seen := make(map[string]bool, len(ids))
	set := make(SchoolSet, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		set = append(set, id)
	}
	return set
}

// ParseSchoolList 解析逗号分隔的教室列表（CSV 导入、查询参数）
func ParseSchoolList(s string) SchoolSet {
	return NewSchoolSet(strings.Split(s, ",")...)
}

// Contains 判断是否包含指定教室
func (s SchoolSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Intersects 判断两个集合是否有交集
func (s SchoolSet) Intersects(other SchoolSet) bool {
	for _, v := range s {
		if other.Contains(v) {
			return true
		}
	}
	return false
}

// Sorted 返回排序后的副本
func (s SchoolSet) Sorted() SchoolSet {
	out := append(SchoolSet{}, s...)
	sort.Strings(out)
	return out
}

// String 以逗号连接
func (s SchoolSet) String() string {
	return strings.Join(s, ",")
}

// MarshalJSON nil 集合输出 []
func (s SchoolSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// UnmarshalJSON 接受数组或 null，并做去重
func (s *SchoolSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSchoolSet(ids...)
	return nil
}
