package assistant

import (
	"context"
	"errors"
	"sync"
	"time"

	"parttimepal-backend/internal/analysis"
	"parttimepal-backend/internal/cvmatch"
	"parttimepal-backend/internal/jobsearch"
	"parttimepal-backend/internal/llm"
	"parttimepal-backend/internal/normalize"
	"parttimepal-backend/internal/runs"
	"parttimepal-backend/internal/session"
)

const searchText = `Title: Nhân viên phục vụ
Company: Highlands Coffee
Domain: highlandscoffee.com.vn
Location: Quận 1
Salary: 25.000đ/giờ
Description: Phục vụ khách tại quầy.
Source: TopCV
---JOB_SEPARATOR---
Title: Gia sư
---JOB_SEPARATOR---`

type stubProvider struct {
	mu        sync.Mutex
	responses map[string]llm.Response
	errs      map[string]error
	// gate blocks the named call until released.
	gate  map[string]chan struct{}
	calls []llm.Request
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		responses: map[string]llm.Response{
			"search":      {Text: searchText, Chunks: []llm.GroundingChunk{{Kind: llm.ChunkWeb, URI: "https://topcv.vn/1", Title: "TopCV"}}},
			"entities":    {Text: `{"jobTitle":"Nhân viên phục vụ","companyName":"Highlands Coffee","salary":"25.000đ/giờ","location":"Quận 1"}`},
			"scam":        {Text: `{"score":10,"riskLevel":"An Toàn","reasons":["Công ty có thật"],"verdict":"Đáng tin"}`},
			"verify":      {Text: "**Kết luận**: Đáng tin"},
			"suitability": {Text: `{"suitability":{"skillsRequired":[],"pros":["Gần trường"],"cons":[],"contactRisks":[],"advice":"Nên ứng tuyển"},"draft":"Chào anh chị"}`},
			"url_extract": {Text: "Tuyển nhân viên phục vụ quán cà phê tại Quận 3, lương 25.000đ/giờ, ca linh hoạt cho sinh viên."},
			"cv_match":    {Text: `{"matchScore":72,"pros":["Có kinh nghiệm phục vụ"],"missingSkills":["Tiếng Anh"],"advice":"Bổ sung chứng chỉ"}`},
		},
		errs: map[string]error{},
		gate: map[string]chan struct{}{},
	}
}

func (p *stubProvider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	resp, ok := p.responses[req.Call]
	err := p.errs[req.Call]
	gate := p.gate[req.Call]
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		}
	}
	if err != nil {
		return llm.Response{}, err
	}
	if !ok {
		return llm.Response{}, errors.New("unexpected call " + req.Call)
	}
	return resp, nil
}

func (p *stubProvider) setErr(call string, err error) {
	p.mu.Lock()
	p.errs[call] = err
	p.mu.Unlock()
}

func (p *stubProvider) hold(call string) chan struct{} {
	ch := make(chan struct{})
	p.mu.Lock()
	p.gate[call] = ch
	p.mu.Unlock()
	return ch
}

func (p *stubProvider) called(call string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.Call == call {
			n++
		}
	}
	return n
}

func newTestService(p llm.Provider) (*Service, *runs.MemoryRepo) {
	repo := runs.NewMemoryRepo()
	svc := &Service{
		Sessions:   session.NewRegistry(time.Hour),
		Normalizer: normalize.New(p, "flash", nil),
		Analysis:   &analysis.Service{Provider: p, Model: "flash", ReasoningModel: "pro", RunTimeout: 5 * time.Second},
		Search: &jobsearch.Service{
			Provider: p,
			Model:    "flash",
			Logo:     jobsearch.LogoResolver{Template: "https://logo.example/%s", Excluded: jobsearch.DefaultExcludedDomains},
			NewBatch: func() string { return "t1" },
		},
		CV:            &cvmatch.Service{Provider: p, Model: "flash"},
		Runs:          repo,
		SearchTimeout: 5 * time.Second,
	}
	return svc, repo
}
