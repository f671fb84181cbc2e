package rod

import (
	"strings"

	"desktop-agent/internal/domain/entity"

	"github.com/ysmood/gson"
)

// domConfidence is reported for every DOM text box; the text is exact but
// the box may include padding.
const domConfidence = 0.95

// textBoxesJS collects visible text with its viewport rectangle: controls by
// their label, other elements by their own text nodes.
const textBoxesJS = `() => {
	const out = [];
	const vw = window.innerWidth, vh = window.innerHeight;
	const push = (text, r) => {
		text = (text || '').replace(/\s+/g, ' ').trim();
		if (!text || r.width < 1 || r.height < 1) return;
		if (r.bottom < 0 || r.right < 0 || r.top > vh || r.left > vw) return;
		out.push({text, x: r.left, y: r.top, w: r.width, h: r.height});
	};
	const visible = (el) => {
		const s = getComputedStyle(el);
		return s.visibility !== 'hidden' && s.display !== 'none' && s.opacity !== '0';
	};
	const controls = 'button, a, input, textarea, select, [role=button], [aria-label]';
	document.querySelectorAll(controls).forEach((el) => {
		if (!visible(el)) return;
		const label = el.getAttribute('aria-label') || el.innerText || el.value || el.placeholder || el.title;
		push(label, el.getBoundingClientRect());
	});
	const walker = document.createTreeWalker(document.body || document.documentElement, NodeFilter.SHOW_TEXT);
	while (walker.nextNode()) {
		const node = walker.currentNode;
		const parent = node.parentElement;
		if (!parent || parent.closest(controls) || !visible(parent)) continue;
		if (['SCRIPT', 'STYLE', 'NOSCRIPT'].includes(parent.tagName)) continue;
		const range = document.createRange();
		range.selectNodeContents(node);
		push(node.textContent, range.getBoundingClientRect());
	}
	return out;
}`

type domBox struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w"`
	H    float64 `json:"h"`
}

func decodeBoxes(v gson.JSON) ([]entity.TextRegion, error) {
	var boxes []domBox
	if err := v.Unmarshal(&boxes); err != nil {
		return nil, err
	}

	regions := make([]entity.TextRegion, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		regions = append(regions, entity.TextRegion{
			Text:       text,
			Confidence: domConfidence,
			Box: entity.Rect{
				X: int(b.X + 0.5),
				Y: int(b.Y + 0.5),
				W: int(b.W + 0.5),
				H: int(b.H + 0.5),
			},
		})
	}
	return regions, nil
}
