package utils

import (
	"strings"

	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/domain"
)

var frontendKeywords = []string{
	"前端", "页面", "界面", "组件", "样式",
	"frontend", "ui", "css", "react", "vue",
}

var backendKeywords = []string{
	"后端", "接口", "数据库", "服务", "迁移",
	"backend", "api", "sql", "server", "schema",
}

// DetectSkills 根据标题和描述中的关键词推断工作项需要的技能。
// 这只是创建工作项时的分类启发式，不属于排期引擎本身；
// 什么都匹配不到时默认前后端都需要，宁可保守也不要漏掉技能道
func DetectSkills(title string, description string) []domain.Skill {
	text := strings.ToLower(title + " " + description)

	skills := make([]domain.Skill, 0, 2)
	for _, keyword := range frontendKeywords {
		if strings.Contains(text, keyword) {
			skills = append(skills, domain.SkillFrontend)
			break
		}
	}
	for _, keyword := range backendKeywords {
		if strings.Contains(text, keyword) {
			skills = append(skills, domain.SkillBackend)
			break
		}
	}

	if len(skills) == 0 {
		return []domain.Skill{domain.SkillFrontend, domain.SkillBackend}
	}

	return skills
}
