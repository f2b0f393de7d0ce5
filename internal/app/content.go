package app

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"bookshare/internal/util"
	"bookshare/pkg/authz"
	"bookshare/pkg/domain"
)

const materialURLTTL = 15 * time.Minute

// PostBlog publishes a blog entry; students and faculty only.
func (a *App) PostBlog(actor domain.User, title, content string) (domain.Blog, error) {
	if !authz.CanPostContent(actor) {
		return domain.Blog{}, ErrNotAllowed
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return domain.Blog{}, ErrMissingFields
	}
	now := time.Now().UTC()
	blog := domain.Blog{
		ID:         util.NewID(),
		Title:      title,
		Content:    content,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.store.SaveBlog(blog); err != nil {
		return domain.Blog{}, fmt.Errorf("save blog: %w", err)
	}
	return blog, nil
}

// EditBlog updates a blog; the author, faculty, or an admin. Empty fields
// keep their current value, so partial updates work.
func (a *App) EditBlog(actor domain.User, id, title, content string) (domain.Blog, error) {
	blog, ok, err := a.store.GetBlog(id)
	if err != nil {
		return domain.Blog{}, fmt.Errorf("load blog: %w", err)
	}
	if !ok {
		return domain.Blog{}, ErrBlogNotFound
	}
	if !authz.CanEditContent(actor, blog.AuthorID) {
		return domain.Blog{}, ErrNotAllowed
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" && content == "" {
		return domain.Blog{}, ErrMissingFields
	}
	if title != "" {
		blog.Title = title
	}
	if content != "" {
		blog.Content = content
	}
	blog.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveBlog(blog); err != nil {
		return domain.Blog{}, fmt.Errorf("save blog: %w", err)
	}
	return blog, nil
}

// DeleteBlog removes a blog; faculty or admin only, never the author alone.
func (a *App) DeleteBlog(actor domain.User, id string) error {
	if !authz.CanDeleteContent(actor) {
		return ErrNotAllowed
	}
	if _, ok, err := a.store.GetBlog(id); err != nil {
		return fmt.Errorf("load blog: %w", err)
	} else if !ok {
		return ErrBlogNotFound
	}
	return a.store.DeleteBlog(id)
}

func (a *App) ListBlogs() ([]domain.Blog, error) {
	return a.store.ListBlogs()
}

func (a *App) GetBlog(id string) (domain.Blog, error) {
	blog, ok, err := a.store.GetBlog(id)
	if err != nil {
		return domain.Blog{}, fmt.Errorf("load blog: %w", err)
	}
	if !ok {
		return domain.Blog{}, ErrBlogNotFound
	}
	return blog, nil
}

// PostInterview publishes an interview experience; students and faculty only.
func (a *App) PostInterview(actor domain.User, title, content string) (domain.InterviewPost, error) {
	if !authz.CanPostContent(actor) {
		return domain.InterviewPost{}, ErrNotAllowed
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return domain.InterviewPost{}, ErrMissingFields
	}
	now := time.Now().UTC()
	post := domain.InterviewPost{
		ID:        util.NewID(),
		Title:     title,
		Content:   content,
		AuthorID:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.SaveInterviewPost(post); err != nil {
		return domain.InterviewPost{}, fmt.Errorf("save interview post: %w", err)
	}
	return post, nil
}

// EditInterview updates an interview post; the author, faculty, or an admin.
// Partial updates work the same way as for blogs.
func (a *App) EditInterview(actor domain.User, id, title, content string) (domain.InterviewPost, error) {
	post, ok, err := a.store.GetInterviewPost(id)
	if err != nil {
		return domain.InterviewPost{}, fmt.Errorf("load interview post: %w", err)
	}
	if !ok {
		return domain.InterviewPost{}, ErrPostNotFound
	}
	if !authz.CanEditContent(actor, post.AuthorID) {
		return domain.InterviewPost{}, ErrNotAllowed
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" && content == "" {
		return domain.InterviewPost{}, ErrMissingFields
	}
	if title != "" {
		post.Title = title
	}
	if content != "" {
		post.Content = content
	}
	post.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveInterviewPost(post); err != nil {
		return domain.InterviewPost{}, fmt.Errorf("save interview post: %w", err)
	}
	return post, nil
}

// DeleteInterview removes an interview post; faculty or admin only.
func (a *App) DeleteInterview(actor domain.User, id string) error {
	if !authz.CanDeleteContent(actor) {
		return ErrNotAllowed
	}
	if _, ok, err := a.store.GetInterviewPost(id); err != nil {
		return fmt.Errorf("load interview post: %w", err)
	} else if !ok {
		return ErrPostNotFound
	}
	return a.store.DeleteInterviewPost(id)
}

func (a *App) ListInterviews() ([]domain.InterviewPost, error) {
	return a.store.ListInterviewPosts()
}

// UploadMaterialInput carries one study-material file and its catalog fields.
type UploadMaterialInput struct {
	Subject      string
	Semester     string
	AcademicYear string
	Filename     string
	ContentType  string
	Size         int64
	Body         io.Reader
}

// UploadMaterial stores a study-material file; faculty only.
func (a *App) UploadMaterial(ctx context.Context, actor domain.User, in UploadMaterialInput) (domain.Material, error) {
	if !authz.CanUploadMaterial(actor) {
		return domain.Material{}, ErrNotAllowed
	}
	if a.objects == nil {
		return domain.Material{}, ErrStorageDisabled
	}
	in.Subject = strings.TrimSpace(in.Subject)
	in.Filename = path.Base(strings.TrimSpace(in.Filename))
	if in.Subject == "" || in.Filename == "" || in.Filename == "." || in.Body == nil {
		return domain.Material{}, ErrMissingFields
	}
	id := util.NewID()
	key := "materials/" + id + "/" + in.Filename
	if err := a.objects.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return domain.Material{}, fmt.Errorf("store material file: %w", err)
	}
	now := time.Now().UTC()
	m := domain.Material{
		ID:           id,
		Subject:      in.Subject,
		Semester:     strings.TrimSpace(in.Semester),
		AcademicYear: strings.TrimSpace(in.AcademicYear),
		Filename:     in.Filename,
		StorageKey:   key,
		UploadedBy:   actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveMaterial(m); err != nil {
		return domain.Material{}, fmt.Errorf("save material: %w", err)
	}
	return m, nil
}

func (a *App) ListMaterials() ([]domain.Material, error) {
	return a.store.ListMaterials()
}

// MaterialDownloadURL returns a short-lived pre-signed URL for the file.
func (a *App) MaterialDownloadURL(ctx context.Context, id string) (string, error) {
	if a.objects == nil {
		return "", ErrStorageDisabled
	}
	m, ok, err := a.store.GetMaterial(id)
	if err != nil {
		return "", fmt.Errorf("load material: %w", err)
	}
	if !ok {
		return "", ErrMaterialNotFound
	}
	url, err := a.objects.PresignGet(ctx, m.StorageKey, materialURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign material: %w", err)
	}
	return url, nil
}

// VerifyMaterial marks a material as reviewed; admins only.
func (a *App) VerifyMaterial(actor domain.User, id string) error {
	if !authz.CanVerifyMaterial(actor) {
		return ErrNotAllowed
	}
	if _, ok, err := a.store.GetMaterial(id); err != nil {
		return fmt.Errorf("load material: %w", err)
	} else if !ok {
		return ErrMaterialNotFound
	}
	return a.store.SetMaterialVerified(id)
}

// ReportAd files a complaint about a listing. Any signed-in user can report.
func (a *App) ReportAd(actor domain.User, adID, reason string) (domain.ReportedAd, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.ReportedAd{}, ErrMissingFields
	}
	if _, ok, err := a.store.GetAd(adID); err != nil {
		return domain.ReportedAd{}, fmt.Errorf("load ad: %w", err)
	} else if !ok {
		return domain.ReportedAd{}, ErrAdNotFound
	}
	r := domain.ReportedAd{
		ID:         util.NewID(),
		AdID:       adID,
		ReporterID: actor.ID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
	if err := a.store.SaveReport(r); err != nil {
		return domain.ReportedAd{}, fmt.Errorf("save report: %w", err)
	}
	return r, nil
}

// ListReports returns all complaints; admins only.
func (a *App) ListReports(actor domain.User) ([]domain.ReportedAd, error) {
	if !authz.CanResolveReport(actor) {
		return nil, ErrNotAllowed
	}
	return a.store.ListReports()
}

// ResolveReport closes a complaint; admins only.
func (a *App) ResolveReport(actor domain.User, id string) error {
	if !authz.CanResolveReport(actor) {
		return ErrNotAllowed
	}
	return a.store.SetReportResolved(id)
}
