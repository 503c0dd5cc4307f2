package utils

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateEmailFromChineseName 把中文姓名转成拼音加随机数字的邮箱地址
func GenerateEmailFromChineseName(chineseName string, emailDomainName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	local := ""

	for _, py := range pinyinArray {
		local += py
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		local += string(digits[rand.Intn(len(digits))])
	}

	return local + "@" + emailDomainName
}

var skillSets = [][]domain.Skill{
	{domain.SkillFrontend},
	{domain.SkillBackend},
	{domain.SkillFrontend, domain.SkillBackend},
}

func GenerateRandomSkills() []domain.Skill {
	return skillSets[rand.Intn(len(skillSets))]
}

func GenerateRandomTeamMember(emailDomainName string) *domain.TeamMember {
	fullName := GenerateRandomChineseName()

	member := &domain.TeamMember{
		Name:               fullName,
		Email:              GenerateEmailFromChineseName(fullName, emailDomainName),
		CapacityPercentage: int32(rand.Intn(11) * 10), // 0-100，按 10 取整
		Skills:             GenerateRandomSkills(),
		PersonalHolidays:   []domain.PersonalHoliday{},
	}

	// 一半的成员带一段 1-5 个自然日的休假
	if rand.Intn(2) == 0 {
		start := time.Now().AddDate(0, 0, rand.Intn(60))
		member.PersonalHolidays = append(member.PersonalHolidays, domain.PersonalHoliday{
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, rand.Intn(5)),
			Description: "随机生成的休假",
		})
	}

	return member
}

var workItemTitleTemplates = []string{
	"重构登录页面组件",
	"优化报表导出接口",
	"修复看板页面样式错位",
	"设计工单数据库索引",
	"升级前端构建工具链",
	"拆分订单服务接口",
	"补充用户中心页面测试",
	"清理历史数据迁移脚本",
}

func GenerateRandomWorkItem(existingIDs []int64) *domain.WorkItem {
	title := fmt.Sprintf("%s #%d", workItemTitleTemplates[rand.Intn(len(workItemTitleTemplates))], rand.Intn(1000))

	item := &domain.WorkItem{
		Title:                  title,
		Description:            "随机生成的工作项",
		Estimate:               float64(rand.Intn(8) + 1),
		RequiredCompletionDate: time.Now().AddDate(0, 0, rand.Intn(90)+14),
		RequiredSkills:         DetectSkills(title, ""),
		Dependencies:           []int64{},
		Status:                 domain.StatusNotStarted,
		AssignedSprints:        []int64{},
	}

	// 三分之一的工作项依赖一个已经存在的工作项
	if len(existingIDs) > 0 && rand.Intn(3) == 0 {
		item.Dependencies = append(item.Dependencies, existingIDs[rand.Intn(len(existingIDs))])
	}

	return item
}

var publicHolidayNames = []string{"元旦", "春节", "清明节", "劳动节", "端午节", "中秋节", "国庆节"}

func GenerateRandomPublicHoliday() *domain.PublicHoliday {
	return &domain.PublicHoliday{
		Date:             time.Now().AddDate(0, 0, rand.Intn(180)),
		Name:             publicHolidayNames[rand.Intn(len(publicHolidayNames))],
		ImpactPercentage: int32((rand.Intn(2) + 1) * 50), // 50 或 100
	}
}
