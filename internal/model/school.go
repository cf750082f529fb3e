package model

// School 教室（静态参考数据，不落库）
type School struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Type     string `json:"type"` // junior | bestone
	Color    string `json:"color"`
}

// Location 教室所在地分组
type Location struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Schools SchoolSet `json:"schools"`
}

var schools = []School{
	{ID: "aizumi-jr", Name: "藍住ジュニア", Location: "藍住", Type: "junior", Color: "#FF6B9D"},
	{ID: "aizumi-bo", Name: "藍住ベストワン", Location: "藍住", Type: "bestone", Color: "#FF8FAB"},
	{ID: "kitajima-jr", Name: "北島中央ジュニア", Location: "北島中央", Type: "junior", Color: "#4ECDC4"},
	{ID: "kitajima-bo", Name: "北島中央ベストワン", Location: "北島中央", Type: "bestone", Color: "#7EDAD3"},
	{ID: "daigakumae-jr", Name: "大学前ジュニア", Location: "大学前", Type: "junior", Color: "#FFB347"},
	{ID: "itano-jr", Name: "板野駅前ジュニア", Location: "板野駅前", Type: "junior", Color: "#B19CD9"},
}

var locations = []Location{
	{ID: "aizumi", Name: "藍住", Schools: SchoolSet{"aizumi-jr", "aizumi-bo"}},
	{ID: "kitajima", Name: "北島中央", Schools: SchoolSet{"kitajima-jr", "kitajima-bo"}},
	{ID: "daigakumae", Name: "大学前", Schools: SchoolSet{"daigakumae-jr"}},
	{ID: "itano", Name: "板野駅前", Schools: SchoolSet{"itano-jr"}},
}

// unknownSchoolColor 未登记教室的显示颜色
const unknownSchoolColor = "#999"

// Schools 返回全部教室（副本）
func Schools() []School {
	return append([]School(nil), schools...)
}

// Locations 返回全部所在地分组（副本）
func Locations() []Location {
	return append([]Location(nil), locations...)
}

// SchoolByID 按 ID 查找教室
func SchoolByID(id string) (School, bool) {
	for _, s := range schools {
		if s.ID == id {
			return s, true
		}
	}
	return School{}, false
}

// SchoolName 返回教室名称，未登记时原样返回 ID
func SchoolName(id string) string {
	if s, ok := SchoolByID(id); ok {
		return s.Name
	}
	return id
}

// SchoolColor 返回教室颜色，未登记时返回灰色
func SchoolColor(id string) string {
	if s, ok := SchoolByID(id); ok {
		return s.Color
	}
	return unknownSchoolColor
}

// UnknownSchools 返回集合中未登记的教室 ID
func UnknownSchools(set SchoolSet) []string {
	var unknown []string
	for _, id := range set {
		if _, ok := SchoolByID(id); !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown
}
