package ghost

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// markdown renders post bodies: GFM tables and autolinks, fenced code with
// CSS-class highlighting, hard line breaks kept, raw HTML passed through.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithGuessLanguage(false),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithUnsafe(),
	),
)

// FrontMatter is the publishing metadata accepted at the top of a document.
type FrontMatter struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Tags        TagList `yaml:"tags"`
	Keywords    TagList `yaml:"keywords"`
	Image       string  `yaml:"image"`
}

// TagList accepts either a YAML list or a single comma-separated string.
type TagList []string

// UnmarshalYAML implements the yaml.v2 unmarshaler used by the frontmatter
// parser.
func (t *TagList) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var one string
	if err := unmarshal(&one); err == nil {
		for _, part := range strings.Split(one, ",") {
			if p := strings.TrimSpace(part); p != "" {
				*t = append(*t, p)
			}
		}
		return nil
	}
	var many []string
	if err := unmarshal(&many); err != nil {
		return err
	}
	*t = many
	return nil
}

// PublishOptions control how a document becomes a post.
type PublishOptions struct {
	Slug         string // empty derives the slug from the document's directory name
	Status       string // empty publishes a draft
	FeatureImage string // local image path; overrides the frontmatter image
}

// PublishMarkdown reads a Markdown file, splits its frontmatter, renders
// the body to HTML, and creates the post. The title falls back to the
// filename when the frontmatter has none; keywords stand in for tags when
// tags are absent.
func (c *Client) PublishMarkdown(ctx context.Context, path string, opts PublishOptions) (*Post, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ghost: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var meta FrontMatter
	body, err := frontmatter.Parse(f, &meta)
	if err != nil {
		return nil, fmt.Errorf("ghost: parse frontmatter: %w", err)
	}

	var buf bytes.Buffer
	if err := markdown.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("ghost: render html: %w", err)
	}

	title := meta.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	tags := meta.Tags
	if len(tags) == 0 {
		tags = meta.Keywords
	}
	slug := opts.Slug
	if slug == "" {
		slug = slugFromPath(path)
	}

	post := Post{
		Title:           title,
		Slug:            slug,
		HTML:            buf.String(),
		Status:          opts.Status,
		Tags:            tags,
		CustomExcerpt:   meta.Description,
		MetaTitle:       title,
		MetaDescription: meta.Description,
	}

	featureLocal := opts.FeatureImage
	if featureLocal == "" && meta.Image != "" {
		if isRemoteURL(meta.Image) {
			post.FeatureImage = meta.Image
		} else {
			featureLocal = filepath.Join(filepath.Dir(path), meta.Image)
		}
	}

	created, err := c.CreatePost(ctx, post)
	if err != nil {
		return nil, err
	}
	if featureLocal != "" {
		return c.SetFeaturedImage(ctx, created.ID, featureLocal)
	}
	return created, nil
}

// slugFromPath derives the post slug from the document's parent directory
// name; documents sitting at "." or the filesystem root get none.
func slugFromPath(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == string(filepath.Separator) {
		return ""
	}
	return dir
}

func isRemoteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "//")
}
