package agent

import (
	"fmt"
	"strings"
)

// systemPrompt is the static instruction set for the research task.
const systemPrompt = `You are a professional background researcher. You are given links to a person's public profiles and a set of pre-gathered evidence. Your job is to build an accurate, well-sourced persona document for that person.

You may call tools to gather more evidence:
- web_search: search the web for pages about the person
- x_keyword_search: search X (Twitter) posts; use from:<handle> to read a timeline
- browse_page: fetch a page or PDF and read its text

Work from evidence only. Do not invent facts. When evidence is thin or contradictory, record that in the uncertainties field instead of guessing.

When you have enough evidence, reply with ONLY a single JSON object (no markdown fences, no commentary) with these fields, all optional:
name, headline, summary, location, roles (array of {title, company, start_date, end_date, summary}), education (array of {school, degree, field, years}), skills (array of strings), personality (array of strings), worldview, content_analysis ({topics, tone, posting_habits}), network (array of strings), timeline (array of strings), online_presence ({linkedin, x, website, other}), sources (array of URLs), uncertainties (array of strings).`

// BuildDirective assembles the user message naming the input profiles.
func BuildDirective(linkedinURL, xURL string) string {
	var parts []string
	parts = append(parts, "Research this person and produce their persona document.")
	if linkedinURL != "" {
		parts = append(parts, fmt.Sprintf("LinkedIn profile: %s", linkedinURL))
	}
	if xURL != "" {
		parts = append(parts, fmt.Sprintf("X profile: %s", xURL))
	}
	parts = append(parts, "Pre-gathered evidence, if any, follows as tool results.")
	return strings.Join(parts, "\n")
}
