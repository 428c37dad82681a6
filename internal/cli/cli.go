// Package cli implements floorctl, the console browser for the floor API.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"floorview/internal/display"
	"floorview/internal/dump"
	"floorview/internal/service"
	"floorview/internal/upstream"

	"github.com/spf13/cobra"
)

// Forum is the read model the commands print.
type Forum interface {
	Categories(ctx context.Context) service.CategoriesResult
	Posts(ctx context.Context, q upstream.PostListQuery) service.PostListResult
	PostDetail(ctx context.Context, q upstream.PostDetailQuery) service.PostDetailResult
}

// Deps are the collaborators the commands run against.
type Deps struct {
	Forum    Forum
	Location *time.Location
	// DumpDir is the default output directory of the dump command.
	DumpDir string
}

// NewRootCmd builds the floorctl command tree.
func NewRootCmd(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "floorctl",
		Short:         "Browse Huluxia floor categories and posts from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newCategoriesCmd(deps),
		newCategoryCmd(deps),
		newPostsCmd(deps),
		newPostCmd(deps),
		newDumpCmd(deps),
	)
	return root
}

func printer(cmd *cobra.Command, deps Deps) *display.Printer {
	return display.New(cmd.OutOrStdout(), deps.Location)
}

func newCategoriesCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "List every board with its sub-boards",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := deps.Forum.Categories(cmd.Context())
			if res.Outcome == service.OutcomeFailed {
				return fmt.Errorf("fetch categories: %w", res.Err)
			}
			printer(cmd, deps).Categories(res.Categories)
			return nil
		},
	}
}

func newCategoryCmd(deps Deps) *cobra.Command {
	var (
		id   int64
		name string
	)
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Show one board found by id or by a substring of its title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if id == 0 && name == "" {
				return fmt.Errorf("one of --id or --name is required")
			}

			res := deps.Forum.Categories(cmd.Context())
			if res.Outcome == service.OutcomeFailed {
				return fmt.Errorf("fetch categories: %w", res.Err)
			}

			cat, ok := service.FindCategory(res.Categories, id, name)
			if !ok {
				target := name
				if id != 0 {
					target = strconv.FormatInt(id, 10)
				}
				return fmt.Errorf("未找到指定的板块: %s", target)
			}
			printer(cmd, deps).Category(cat)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "category id")
	cmd.Flags().StringVar(&name, "name", "", "substring of the category title")
	return cmd
}

type postListFlags struct {
	categoryID int64
	tagID      int64
	count      int
	sortBy     int
}

func (f *postListFlags) bind(cmd *cobra.Command, idUsage string) {
	cmd.Flags().Int64Var(&f.categoryID, "id", 0, idUsage)
	cmd.Flags().Int64Var(&f.tagID, "tag", 0, "sub-board tag id")
	cmd.Flags().IntVar(&f.count, "count", service.DefaultPageSize, "posts per page")
	cmd.Flags().IntVar(&f.sortBy, "sort", 0, "upstream sort order")
}

func (f *postListFlags) query() upstream.PostListQuery {
	return upstream.PostListQuery{CategoryID: f.categoryID, TagID: f.tagID, Count: f.count, SortBy: f.sortBy}
}

func newPostsCmd(deps Deps) *cobra.Command {
	var flags postListFlags
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List posts of a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := deps.Forum.Posts(cmd.Context(), flags.query())
			if res.Outcome == service.OutcomeFailed {
				return fmt.Errorf("fetch posts of category %d: %w", flags.categoryID, res.Err)
			}
			printer(cmd, deps).Posts(res.Page)
			return nil
		},
	}
	flags.bind(cmd, "category id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

type postDetailFlags struct {
	postID int64
	page   int
	size   int
}

func (f *postDetailFlags) bind(cmd *cobra.Command, idUsage string) {
	cmd.Flags().Int64Var(&f.postID, "id", 0, idUsage)
	cmd.Flags().IntVar(&f.page, "page", 1, "comment page number")
	cmd.Flags().IntVar(&f.size, "size", service.DefaultPageSize, "comments per page")
}

func (f *postDetailFlags) query() upstream.PostDetailQuery {
	return upstream.PostDetailQuery{PostID: f.postID, PageNo: f.page, PageSize: f.size}
}

func fetchPost(ctx context.Context, forum Forum, q upstream.PostDetailQuery) (service.PostDetailResult, error) {
	res := forum.PostDetail(ctx, q)
	switch res.Outcome {
	case service.OutcomeFailed:
		return res, fmt.Errorf("fetch post %d: %w", q.PostID, res.Err)
	case service.OutcomeEmpty:
		return res, fmt.Errorf("未找到ID为 %d 的帖子", q.PostID)
	}
	return res, nil
}

func newPostCmd(deps Deps) *cobra.Command {
	var flags postDetailFlags
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Show a post with one page of comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := fetchPost(cmd.Context(), deps.Forum, flags.query())
			if err != nil {
				return err
			}
			printer(cmd, deps).PostDetail(res.Detail)
			return nil
		},
	}
	flags.bind(cmd, "post id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newDumpCmd(deps Deps) *cobra.Command {
	var (
		what    string
		out     string
		format  string
		list    postListFlags
		details postDetailFlags
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write categories, a post list or a post to a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := dump.ParseFormat(format)
			if err != nil {
				return err
			}
			dir := out
			if dir == "" {
				dir = deps.DumpDir
			}

			var (
				name string
				data any
			)
			ctx := cmd.Context()
			switch what {
			case "categories":
				res := deps.Forum.Categories(ctx)
				if res.Outcome == service.OutcomeFailed {
					return fmt.Errorf("fetch categories: %w", res.Err)
				}
				name, data = "categories", res.Categories
			case "posts":
				if list.categoryID == 0 {
					return fmt.Errorf("--id is required when dumping posts")
				}
				res := deps.Forum.Posts(ctx, list.query())
				if res.Outcome == service.OutcomeFailed {
					return fmt.Errorf("fetch posts of category %d: %w", list.categoryID, res.Err)
				}
				name, data = fmt.Sprintf("posts_%d", list.categoryID), res.Page
			case "post":
				details.postID = list.categoryID
				if details.postID == 0 {
					return fmt.Errorf("--id is required when dumping a post")
				}
				res, err := fetchPost(ctx, deps.Forum, details.query())
				if err != nil {
					return err
				}
				name, data = fmt.Sprintf("post_%d", details.postID), res.Detail
			default:
				return fmt.Errorf("unknown dump target %q (want categories, posts or post)", what)
			}

			path, err := dump.WriteFile(dir, name, f, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "数据已保存到 %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&what, "what", "categories", "categories, posts or post")
	cmd.Flags().StringVar(&out, "out", "", "output directory (defaults to DUMP_DIR)")
	cmd.Flags().StringVar(&format, "format", string(dump.FormatJSON), "json or yaml")
	list.bind(cmd, "category id for --what posts, post id for --what post")
	cmd.Flags().IntVar(&details.page, "page", 1, "comment page number")
	cmd.Flags().IntVar(&details.size, "size", service.DefaultPageSize, "comments per page")
	return cmd
}
