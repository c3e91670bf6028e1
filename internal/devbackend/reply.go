package devbackend

import (
	"fmt"
	"strings"
)

// Style names the real backend understands.
const (
	StyleFriend   = "친구체"
	StylePolite   = "존댓말"
	StyleBusiness = "비즈니스"
)

// StylePrompts are the system prompts the real backend uses per style.
var StylePrompts = map[string]string{
	StyleFriend:   "너는 나의 친구야. 반말로 유쾌하게 대답해줘.",
	StylePolite:   "너는 나의 어시스턴트야. 공손하고 정중하게 대답해줘.",
	StyleBusiness: "너는 전문 컨설턴트야. 비즈니스 어투로 간결하게 답변해줘.",
}

var replyTemplates = map[string]string{
	StyleFriend:   "오, %q 라고? 재밌다! 더 얘기해줘.",
	StylePolite:   "%q 라고 말씀하셨군요. 조금 더 자세히 말씀해 주시겠어요?",
	StyleBusiness: "확인했습니다: %q. 추가 요청 사항을 알려주십시오.",
}

// resolveTone picks a reply template for a request. A style wins over a
// system prompt; unknown styles fall back to the friendly tone.
func resolveTone(style, systemPrompt string) string {
	if style != "" {
		if _, ok := StylePrompts[style]; ok {
			return style
		}
		return StyleFriend
	}
	switch {
	case strings.Contains(systemPrompt, "존댓말"), strings.Contains(systemPrompt, "공손"):
		return StylePolite
	case strings.Contains(systemPrompt, "비즈니스"), strings.Contains(systemPrompt, "컨설턴트"):
		return StyleBusiness
	default:
		return StyleFriend
	}
}

// cannedReply produces a deterministic reply in the requested tone.
func cannedReply(input, style, systemPrompt string) string {
	return fmt.Sprintf(replyTemplates[resolveTone(style, systemPrompt)], input)
}
