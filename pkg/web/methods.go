package web

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"src.crevgui.dev/pkg/review"
	"src.crevgui.dev/pkg/rpc"
)

// Arguments of requests. Each method uses the fields it needs.
type args struct {
	CrateName     string `json:"crate_name"`
	CrateVersion  string `json:"crate_version"`
	Key           string `json:"key"`
	Thoroughness  string `json:"thoroughness"`
	Understanding string `json:"understanding"`
	Rating        string `json:"rating"`
	Comment       string `json:"comment"`
	ProjectDir    string `json:"project_dir"`
	URL           string `json:"url"`
}

func parseArgs(data json.RawMessage) (args, error) {
	var a args
	if len(data) == 0 || string(data) == "null" {
		return a, nil
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, &RequestError{"request_data", err.Error()}
	}
	return a, nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &review.ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

func (s *Server) crateList(_ context.Context, _ json.RawMessage) (*rpc.Response, error) {
	crates, err := s.store.Crates()
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, len(crates))
	for i, c := range crates {
		rows[i] = map[string]any{
			"crate_name":   c.Name,
			"review_count": strconv.Itoa(c.Reviews),
		}
	}
	s.mutex.Lock()
	projectDir := s.projectDir
	s.mutex.Unlock()
	return mustResponse("crate_list_page", map[string]any{
		"has_crates":  len(crates) > 0,
		"crate_row":   rows,
		"project_dir": projectDir,
	}), nil
}

func (s *Server) versionList(_ context.Context, data json.RawMessage) (*rpc.Response, error) {
	a, err := parseArgs(data)
	if err != nil {
		return nil, err
	}
	if err := required("crate_name", a.CrateName); err != nil {
		return nil, err
	}
	return s.versionListPage(a.CrateName)
}

func (s *Server) versionListPage(name string) (*rpc.Response, error) {
	versions, err := s.store.Versions(name)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, len(versions))
	for i, v := range versions {
		key := review.Key(name, v)
		row := map[string]any{"version": v, "reviewed": false, "rating": "", "key": key}
		if r, err := s.store.Review(key); err == nil {
			row["reviewed"] = true
			row["rating"] = string(r.Verdict.Rating)
		}
		rows[i] = row
	}
	return mustResponse("version_list_page", map[string]any{
		"crate_name":   name,
		"crate_url":    CrateURL(name),
		"has_versions": len(versions) > 0,
		"versions":     rows,
	}), nil
}

// CrateURL returns the crates.io page of a crate.
func CrateURL(name string) string {
	return review.CratesIO + "/crates/" + url.PathEscape(name)
}

func (s *Server) reviewList(_ context.Context, _ json.RawMessage) (*rpc.Response, error) {
	return s.reviewListPage()
}

func (s *Server) reviewListPage() (*rpc.Response, error) {
	reviews, err := s.store.Reviews()
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, len(reviews))
	for i, r := range reviews {
		rows[i] = map[string]any{
			"crate_name":    r.Package.Name,
			"crate_version": r.Package.Version,
			"rating":        string(r.Verdict.Rating),
			"comment":       r.Comment,
			"key":           r.Key(),
		}
	}
	return mustResponse("review_list_page", map[string]any{
		"has_reviews": len(reviews) > 0,
		"reviews":     rows,
	}), nil
}

func (s *Server) reviewNew(_ context.Context, data json.RawMessage) (*rpc.Response, error) {
	a, err := parseArgs(data)
	if err != nil {
		return nil, err
	}
	name, version := strings.TrimSpace(a.CrateName), strings.TrimSpace(a.CrateVersion)
	if err := required("crate_name", name); err != nil {
		return nil, err
	}
	if err := required("crate_version", version); err != nil {
		return nil, err
	}
	if r, err := s.store.Review(review.Key(name, version)); err == nil {
		return reviewEditPage(r, false), nil
	}
	r := review.New(name, version)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return reviewEditPage(r, true), nil
}

func (s *Server) reviewEdit(_ context.Context, data json.RawMessage) (*rpc.Response, error) {
	a, err := parseArgs(data)
	if err != nil {
		return nil, err
	}
	if err := checkKey(a.Key); err != nil {
		return nil, err
	}
	r, err := s.store.Review(a.Key)
	if err != nil {
		return nil, err
	}
	return reviewEditPage(r, false), nil
}

func checkKey(key string) error {
	if _, _, err := review.ParseKey(key); err != nil {
		return &review.ValidationError{Field: "key", Reason: "must be crate@version"}
	}
	return nil
}

func reviewEditPage(r review.Review, isNew bool) *rpc.Response {
	data := map[string]any{
		"crate_name":    r.Package.Name,
		"crate_version": r.Package.Version,
		"is_new":        isNew,
		"comment":       r.Comment,
		"key":           r.Key(),
	}
	for _, l := range review.Levels {
		data["sel_th_"+string(l)] = l == r.Verdict.Thoroughness
		data["sel_un_"+string(l)] = l == r.Verdict.Understanding
	}
	for _, ra := range review.Ratings {
		data["sel_ra_"+string(ra)] = ra == r.Verdict.Rating
	}
	return mustResponse("review_edit_page", data)
}

func (s *Server) reviewSave(_ context.Context, data json.RawMessage) (*rpc.Response, error) {
	a, err := parseArgs(data)
	if err != nil {
		return nil, err
	}
	r := review.New(strings.TrimSpace(a.CrateName), strings.TrimSpace(a.CrateVersion))
	r.Date = s.opts.Now().UTC().Truncate(time.Second)
	r.Verdict = review.Verdict{
		Thoroughness:  review.Level(a.Thoroughness),
		Understanding: review.Level(a.Understanding),
		Rating:        review.Rating(a.Rating),
	}
	r.Comment = strings.TrimSpace(a.Comment)
	if err := s.store.PutReview(r); err != nil {
		return nil, err
	}
	return s.reviewListPage()
}

func (s *Server) reviewDelete(_ context.Context, data json.RawMessage) (*rpc.Response, error) {
	a, err := parseArgs(data)
	if err != nil {
		return nil, err
	}
	if err := checkKey(a.Key); err != nil {
		return nil, err
	}
	if err := s.store.DelReview(a.Key); err != nil {
		return nil, err
	}
	return s.reviewListPage()
}

func (s *Server) reviewPublish(ctx context.Context, _ json.RawMessage) (*rpc.Response, error) {
	out, err := s.crev.Publish(ctx)
	if err != nil {
		return nil, &CrevError{"publishing", out, err}
	}
	return modal("Reviews published", "Your proof repository has been published.", out), nil
}

func (s *Server) updateIndex(ctx context.Context, _ json.RawMessage) (*rpc.Response, error) {
	out, err := s.crev.Fetch(ctx)
	if err != nil {
		return nil, &CrevError{"fetching", out, err}
	}
	return modal("Index updated", "Fetched the proofs of all known reviewers.", out), nil
}

func (s *Server) verifyProject(ctx context.Context, data json.RawMessage) (*rpc.Response, error) {
	a, err := parseArgs(data)
	if err != nil {
		return nil, err
	}
	dir := strings.TrimSpace(a.ProjectDir)
	if err := required("project_dir", dir); err != nil {
		return nil, err
	}
	rows, err := s.crev.Verify(ctx, dir)
	if err != nil {
		return nil, &CrevError{"verifying " + dir, "", err}
	}
	s.mutex.Lock()
	s.projectDir = dir
	s.mutex.Unlock()

	verified := 0
	items := make([]map[string]any, len(rows))
	for i, row := range rows {
		if err := s.store.AddVersions(row.Name, row.Version); err != nil {
			return nil, err
		}
		if row.Verified() {
			verified++
		}
		items[i] = map[string]any{
			"status":        row.Status,
			"crate_name":    row.Name,
			"crate_version": row.Version,
			"verified":      row.Verified(),
			"key":           review.Key(row.Name, row.Version),
		}
	}
	return mustResponse("verify_project_page", map[string]any{
		"project_dir":    dir,
		"verified_count": strconv.Itoa(verified),
		"total_count":    strconv.Itoa(len(rows)),
		"rows":           items,
	}), nil
}

func (s *Server) openExternal(_ context.Context, data json.RawMessage) (*rpc.Response, error) {
	a, err := parseArgs(data)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(a.URL, review.CratesIO+"/") {
		return nil, &RequestError{"url", "only crates.io pages can be opened"}
	}
	if err := s.opts.Open(a.URL); err != nil {
		return nil, err
	}
	return modal("Opened in browser", a.URL, ""), nil
}

func modal(title, message, output string) *rpc.Response {
	return mustResponse("modal_message", map[string]any{
		"title":      title,
		"message":    message,
		"has_output": output != "",
		"output":     output,
		"confirm":    false,
	})
}
