package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/twiced-technology-gmbh/tasktracker/internal/clierr"
	"github.com/twiced-technology-gmbh/tasktracker/internal/task"
)

// collection binds the routes of one entity kind to the store.
type collection struct {
	path   string
	kind   task.Kind
	list   func() []task.Entity
	get    func(id int) (task.Entity, error)
	add    func(e task.Entity) (task.Entity, error)
	update func(e task.Entity) (task.Entity, error)
	remove func(id int) error
	clear  func() int
}

func (srv *Server) collections() []collection {
	s := srv.store
	return []collection{
		{
			path:   "/tasks",
			kind:   task.KindTask,
			list:   func() []task.Entity { return entities(s.Tasks()) },
			get:    func(id int) (task.Entity, error) { return s.GetTask(id) },
			add:    func(e task.Entity) (task.Entity, error) { return s.AddTask(e.(*task.Task)) },
			update: func(e task.Entity) (task.Entity, error) { return s.UpdateTask(e.(*task.Task)) },
			remove: s.DeleteTask,
			clear:  s.DeleteAllTasks,
		},
		{
			path:   "/epics",
			kind:   task.KindEpic,
			list:   func() []task.Entity { return entities(s.Epics()) },
			get:    func(id int) (task.Entity, error) { return s.GetEpic(id) },
			add:    func(e task.Entity) (task.Entity, error) { return s.AddEpic(e.(*task.Epic)) },
			update: func(e task.Entity) (task.Entity, error) { return s.UpdateEpic(e.(*task.Epic)) },
			remove: s.DeleteEpic,
			clear:  s.DeleteAllEpics,
		},
		{
			path:   "/subtasks",
			kind:   task.KindSubTask,
			list:   func() []task.Entity { return entities(s.SubTasks()) },
			get:    func(id int) (task.Entity, error) { return s.GetSubTask(id) },
			add:    func(e task.Entity) (task.Entity, error) { return s.AddSubTask(e.(*task.SubTask)) },
			update: func(e task.Entity) (task.Entity, error) { return s.UpdateSubTask(e.(*task.SubTask)) },
			remove: s.DeleteSubTask,
			clear:  s.DeleteAllSubTasks,
		},
	}
}

func (srv *Server) listHandler(col collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, task.ToRecords(col.list()))
	}
}

// getHandler records the view in the history, so it saves like a mutation.
func (srv *Server) getHandler(col collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}

		var e task.Entity
		err = srv.mutate(func() error {
			e, err = col.get(id)
			return err
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, task.ToRecord(e))
	}
}

// saveHandler adds the posted entity when it has no id and updates it
// otherwise.
func (srv *Server) saveHandler(col collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var rec task.Record
		if err := c.Bind(&rec); err != nil {
			return clierr.Wrap(clierr.InvalidInput, err, "invalid request body")
		}
		e, err := rec.Entity(col.kind)
		if err != nil {
			return err
		}

		status := http.StatusOK
		var out task.Entity
		err = srv.mutate(func() error {
			if rec.ID == 0 {
				status = http.StatusCreated
				out, err = col.add(e)
			} else {
				out, err = col.update(e)
			}
			return err
		})
		if err != nil {
			return err
		}
		return c.JSON(status, task.ToRecord(out))
	}
}

func (srv *Server) deleteHandler(col collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		if err := srv.mutate(func() error { return col.remove(id) }); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (srv *Server) clearHandler(col collection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var n int
		err := srv.mutate(func() error {
			n = col.clear()
			return nil
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]int{"deleted": n})
	}
}

func (srv *Server) epicSubTasksHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	subs, err := srv.store.SubTasksOf(id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task.ToRecords(subs))
}

func (srv *Server) historyHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, task.ToRecords(srv.store.History()))
}

func (srv *Server) prioritizedHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, task.ToRecords(srv.store.Prioritized()))
}

func pathID(c echo.Context) (int, error) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, task.ValidateTaskID(raw)
	}
	return id, nil
}

func entities[E task.Entity](list []E) []task.Entity {
	out := make([]task.Entity, len(list))
	for i, e := range list {
		out[i] = e
	}
	return out
}
