// Package imagegen classifies chat messages as image requests and builds
// URLs for a prompt-in-path image generation endpoint.
package imagegen

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

var triggerKeywords = []string{
	"generate image",
	"create image",
	"draw",
	"visualize",
	"make a picture",
	"create a diagram",
	"generate a photo",
	"show me an image",
	"create an illustration",
}

var (
	verbPattern = regexp.MustCompile(`(?i)generate|create|draw|make|show me|visualize`)
	nounPattern = regexp.MustCompile(`(?i)image|picture|photo|illustration|diagram`)
)

const (
	minPromptChars  = 10
	fallbackContext = 200
	fallbackPrefix  = "A visual representation of: "
)

// IsImageRequest reports whether message contains one of the trigger phrases.
// The match is a case-insensitive substring check.
func IsImageRequest(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range triggerKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// ExtractPrompt strips trigger verbs and image nouns from message. When fewer
// than 10 characters remain, the prompt is built from the start of the document.
func ExtractPrompt(message, documentText string) string {
	prompt := strings.ToLower(message)
	prompt = verbPattern.ReplaceAllString(prompt, "")
	prompt = nounPattern.ReplaceAllString(prompt, "")
	prompt = strings.TrimSpace(prompt)

	if utf8.RuneCountInString(prompt) < minPromptChars {
		prompt = fallbackPrefix + utils.Truncate(documentText, fallbackContext)
	}

	return prompt
}

// Builder renders image URLs for a fixed endpoint and size.
type Builder struct {
	endpoint string
	width    int
	height   int
}

func NewBuilder(endpoint string, width, height int) *Builder {
	return &Builder{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		width:    width,
		height:   height,
	}
}

func (b *Builder) URL(prompt string) string {
	return fmt.Sprintf("%s/prompt/%s?width=%d&height=%d&nologo=true", b.endpoint, EncodeURIComponent(prompt), b.width, b.height)
}

// EncodeURIComponent percent-encodes s leaving only A-Z a-z 0-9 and - _ . ! ~ * ' ( ) as-is.
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return componentReplacer.Replace(escaped)
}

var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ConfirmationMessage is the canned assistant reply for an image request.
func ConfirmationMessage(imageURL, prompt string) string {
	return fmt.Sprintf(`I've generated an image based on your request! Here it is:

![Generated Image](%s)

**Prompt used:** %s

Would you like me to generate another image with different details, or do you have questions about the document?`, imageURL, prompt)
}
