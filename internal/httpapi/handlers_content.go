package httpapi

import (
	"net/http"

	"portfolioserver/internal/domain"
	"portfolioserver/internal/service"
)

func (a *api) handleMessageSend(w http.ResponseWriter, r *http.Request) {
	var in service.MessageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeBadBody(w, err)
		return
	}
	msg, err := a.messageSvc.Send(r.Context(), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Message sent", envelope{"data": msg})
}

func (a *api) handleMessageList(w http.ResponseWriter, r *http.Request) {
	msgs, err := a.messageSvc.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"count": len(msgs), "messages": msgs})
}

func (a *api) handleMessageDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.messageSvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Message deleted", nil)
}

func (a *api) handleProjectAdd(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeBadBody(w, err)
		return
	}
	defer form.close()

	deployed, err := form.boolPtr("deployed")
	if err != nil {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"deployed": "must be true or false"}))
		return
	}
	banner, err := form.upload("projectBanner")
	if err != nil {
		writeBadBody(w, err)
		return
	}

	p, err := a.projectSvc.Add(r.Context(), service.ProjectInput{
		Title:        form.get("title"),
		Description:  form.get("description"),
		GitRepoLink:  form.get("gitRepoLink"),
		ProjectLink:  form.get("projectLink"),
		Technologies: service.SplitList(form.get("technologies")),
		Stack:        service.SplitList(form.get("stack")),
		Deployed:     deployed,
	}, banner)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Project added", envelope{"project": p})
}

func (a *api) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeBadBody(w, err)
		return
	}
	defer form.close()

	deployed, err := form.boolPtr("deployed")
	if err != nil {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"deployed": "must be true or false"}))
		return
	}
	upd := service.ProjectUpdate{
		Title:        form.ptr("title"),
		Description:  form.ptr("description"),
		GitRepoLink:  form.ptr("gitRepoLink"),
		ProjectLink:  form.ptr("projectLink"),
		Technologies: service.SplitList(form.get("technologies")),
		Stack:        service.SplitList(form.get("stack")),
		Deployed:     deployed,
	}
	if upd.Banner, err = form.upload("projectBanner"); err != nil {
		writeBadBody(w, err)
		return
	}

	p, err := a.projectSvc.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Project updated", envelope{"project": p})
}

func (a *api) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.projectSvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Project deleted", nil)
}

func (a *api) handleProjectList(w http.ResponseWriter, r *http.Request) {
	projects, err := a.projectSvc.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"projects": projects})
}

func (a *api) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	p, err := a.projectSvc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"project": p})
}

func (a *api) handleSkillAdd(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeBadBody(w, err)
		return
	}
	defer form.close()

	svg, err := form.upload("svg")
	if err != nil {
		writeBadBody(w, err)
		return
	}
	sk, err := a.skillSvc.Add(r.Context(), service.SkillInput{
		Title:       form.get("title"),
		Proficiency: form.get("proficiency"),
	}, svg)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Skill added", envelope{"skill": sk})
}

type skillUpdateRequest struct {
	Proficiency string `json:"proficiency"`
}

func (a *api) handleSkillUpdate(w http.ResponseWriter, r *http.Request) {
	var req skillUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}
	sk, err := a.skillSvc.UpdateProficiency(r.Context(), r.PathValue("id"), req.Proficiency)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Skill updated", envelope{"skill": sk})
}

func (a *api) handleSkillDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.skillSvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Skill deleted", nil)
}

func (a *api) handleSkillList(w http.ResponseWriter, r *http.Request) {
	skills, err := a.skillSvc.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"skills": skills})
}

func (a *api) handleApplicationAdd(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeBadBody(w, err)
		return
	}
	defer form.close()

	svg, err := form.upload("svg")
	if err != nil {
		writeBadBody(w, err)
		return
	}
	app, err := a.appSvc.Add(r.Context(), form.get("name"), svg)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Software application added", envelope{"softwareApplication": app})
}

func (a *api) handleApplicationDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.appSvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Software application deleted", nil)
}

func (a *api) handleApplicationList(w http.ResponseWriter, r *http.Request) {
	apps, err := a.appSvc.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"softwareApplications": apps})
}

type timelineRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Timeline    struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"timeline"`
}

func (a *api) handleTimelineAdd(w http.ResponseWriter, r *http.Request) {
	var req timelineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadBody(w, err)
		return
	}
	e, err := a.timelineSvc.Add(r.Context(), service.TimelineInput{
		Title:       req.Title,
		Description: req.Description,
		From:        req.Timeline.From,
		To:          req.Timeline.To,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Timeline added", envelope{"timeline": e})
}

func (a *api) handleTimelineDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.timelineSvc.Delete(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Timeline deleted", nil)
}

func (a *api) handleTimelineList(w http.ResponseWriter, r *http.Request) {
	entries, err := a.timelineSvc.List(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", envelope{"timelines": entries})
}
