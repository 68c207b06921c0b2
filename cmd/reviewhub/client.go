package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"reviewhub/internal/profile"
	"reviewhub/internal/view"
	"reviewhub/pkg/models"
)

type profileData struct {
	Cookie string `json:"cookie"`
}

type reviewListResponse struct {
	Total    int             `json:"total"`
	Category string          `json:"category"`
	Q        string          `json:"q"`
	Items    []models.Review `json:"items"`
}

type actionResponse struct {
	Changed bool              `json:"changed"`
	Panel   view.CommentPanel `json:"panel"`
}

type apiClient struct {
	http        *http.Client
	baseURL     string
	profilePath string
}

func newAPIClient() *apiClient {
	return &apiClient{
		http:        &http.Client{Timeout: 15 * time.Second},
		baseURL:     strings.TrimRight(flagAPI, "/"),
		profilePath: flagProfile,
	}
}

// doJSON sends payload as JSON and decodes the reply into out. The profile
// cookie is replayed on every call and refreshed whenever the server issues
// a new one.
func (c *apiClient) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie, err := readProfile(c.profilePath); err == nil && cookie != "" {
		req.AddCookie(&http.Cookie{Name: profile.CookieName, Value: cookie})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.Name == profile.CookieName && ck.Value != "" {
			if err := saveProfile(c.profilePath, ck.Value); err != nil {
				return fmt.Errorf("save profile: %w", err)
			}
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func defaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.reviewhub-profile.json"
	}
	return filepath.Join(home, ".reviewhub", "profile.json")
}

func saveProfile(path, cookie string) error {
	if cookie == "" {
		return errors.New("empty profile cookie")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(profileData{Cookie: cookie}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readProfile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var pd profileData
	if err := json.Unmarshal(data, &pd); err != nil {
		return "", err
	}
	return strings.TrimSpace(pd.Cookie), nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{Scheme: scheme, Host: u.Host, Path: path}).String(), nil
}

func reviewPath(id int, rest string) string {
	return "/api/reviews/" + strconv.Itoa(id) + rest
}

// --- reviews ---

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Browse reviews",
}

var reviewsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Filter reviews by category and text",
	RunE: func(cmd *cobra.Command, _ []string) error {
		category, _ := cmd.Flags().GetString("category")
		q, _ := cmd.Flags().GetString("q")

		v := url.Values{}
		v.Set("category", category)
		if q != "" {
			v.Set("q", q)
		}
		var resp reviewListResponse
		if err := newAPIClient().doJSON(cmd.Context(), http.MethodGet, "/api/reviews?"+v.Encode(), nil, &resp); err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var reviewsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one review with its comments and related reviews",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetInt("id")
		var resp view.Detail
		if err := newAPIClient().doJSON(cmd.Context(), http.MethodGet, reviewPath(id, ""), nil, &resp); err != nil {
			return fmt.Errorf("show failed: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

// --- comments ---

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Read, post and vote on comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the comments on a review",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetInt("id")
		var resp view.CommentPanel
		if err := newAPIClient().doJSON(cmd.Context(), http.MethodGet, reviewPath(id, "/comments"), nil, &resp); err != nil {
			return fmt.Errorf("list failed: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var commentsPostCmd = &cobra.Command{
	Use:   "post [text]",
	Short: "Post a comment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt("id")
		payload := map[string]string{"text": strings.Join(args, " ")}
		var resp actionResponse
		if err := newAPIClient().doJSON(cmd.Context(), http.MethodPost, reviewPath(id, "/comments"), payload, &resp); err != nil {
			return fmt.Errorf("post failed: %w", err)
		}
		if !resp.Changed {
			return errors.New("nothing to post: comment text is empty")
		}
		return printJSON(cmd.OutOrStdout(), resp.Panel)
	},
}

func voteCmd(dir string) *cobra.Command {
	return &cobra.Command{
		Use:   dir + " [cid]",
		Short: "Add one " + dir + " to a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetInt("id")
			path := reviewPath(id, "/comments/"+url.PathEscape(args[0])+"/"+dir)
			var resp actionResponse
			if err := newAPIClient().doJSON(cmd.Context(), http.MethodPost, path, nil, &resp); err != nil {
				return fmt.Errorf("%s failed: %w", dir, err)
			}
			return printJSON(cmd.OutOrStdout(), resp.Panel)
		},
	}
}

var commentsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream the comment panel of a review over WebSocket",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetInt("id")
		c := newAPIClient()
		wsURL, err := websocketURL(c.baseURL, reviewPath(id, "/panel/ws"))
		if err != nil {
			return err
		}

		h := http.Header{}
		if cookie, err := readProfile(c.profilePath); err == nil && cookie != "" {
			h.Set("Cookie", profile.CookieName+"="+cookie)
		}
		ws, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, h)
		if err != nil {
			return fmt.Errorf("dial %s: %w", wsURL, err)
		}
		defer ws.Close()

		fmt.Fprintf(cmd.ErrOrStderr(), "watching review %d (ctrl+c to stop)\n", id)
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(msg))
		}
	},
}

// --- theme ---

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or toggle the light/dark theme",
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current theme",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var resp map[string]string
		if err := newAPIClient().doJSON(cmd.Context(), http.MethodGet, "/api/theme", nil, &resp); err != nil {
			return fmt.Errorf("theme failed: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var themeToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Switch between light and dark",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var resp map[string]string
		if err := newAPIClient().doJSON(cmd.Context(), http.MethodPost, "/api/theme", nil, &resp); err != nil {
			return fmt.Errorf("toggle failed: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func init() {
	reviewsSearchCmd.Flags().String("category", "All", "category filter")
	reviewsSearchCmd.Flags().String("q", "", "text query")
	reviewsShowCmd.Flags().Int("id", 0, "review id")
	_ = reviewsShowCmd.MarkFlagRequired("id")
	reviewsCmd.AddCommand(reviewsSearchCmd, reviewsShowCmd)

	commentsCmd.PersistentFlags().Int("id", 0, "review id")
	_ = commentsCmd.MarkPersistentFlagRequired("id")
	commentsCmd.AddCommand(commentsListCmd, commentsPostCmd, voteCmd("upvote"), voteCmd("downvote"), commentsWatchCmd)

	themeCmd.AddCommand(themeShowCmd, themeToggleCmd)
}
