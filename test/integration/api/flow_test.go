// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

//go:build integration

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

type response struct {
	status int
	body   map[string]any
	list   []any
}

func call(method, path, token string, payload any) response {
	GinkgoHelper()
	var body bytes.Buffer
	if payload != nil {
		Expect(json.NewEncoder(&body).Encode(payload)).To(Succeed())
	}
	req, err := http.NewRequestWithContext(env.ctx, method, env.server.URL+path, &body)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.server.Client().Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()

	var raw json.RawMessage
	Expect(json.NewDecoder(resp.Body).Decode(&raw)).To(Succeed())
	out := response{status: resp.StatusCode}
	if len(raw) > 0 && raw[0] == '[' {
		Expect(json.Unmarshal(raw, &out.list)).To(Succeed())
	} else {
		Expect(json.Unmarshal(raw, &out.body)).To(Succeed())
	}
	return out
}

type account struct {
	id    string
	token string
}

func register(email, nick string) account {
	GinkgoHelper()
	resp := call(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     email,
		"firstName": "Test",
		"lastName":  "User",
		"nickName":  nick,
		"password":  "secret123",
	})
	Expect(resp.status).To(Equal(http.StatusCreated), "%v", resp.body)
	user := resp.body["user"].(map[string]any)
	return account{id: user["id"].(string), token: resp.body["token"].(string)}
}

func seedMedia(ownerID, title string) string {
	GinkgoHelper()
	id := ulid.Make().String()
	_, err := env.pool.Exec(env.ctx,
		`INSERT INTO media (id, owner_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		id, ownerID, title, time.Now().UTC())
	Expect(err).NotTo(HaveOccurred())
	return id
}

var _ = Describe("MediaHub API", func() {
	BeforeEach(func() {
		truncateAll(env.ctx, env.pool)
	})

	Describe("registration", func() {
		It("makes the first identity ADMIN and later ones MEMBER", func() {
			first := call(http.MethodPost, "/api/auth/register", "", map[string]string{
				"email": "root@example.com", "firstName": "Ro", "lastName": "Ot",
				"nickName": "root", "password": "secret123",
			})
			Expect(first.status).To(Equal(http.StatusCreated))
			Expect(first.body["user"].(map[string]any)["role"]).To(Equal("ADMIN"))

			second := call(http.MethodPost, "/api/auth/register", "", map[string]string{
				"email": "ann@example.com", "firstName": "An", "lastName": "Na",
				"nickName": "ann", "password": "secret123",
			})
			Expect(second.status).To(Equal(http.StatusCreated))
			Expect(second.body["user"].(map[string]any)["role"]).To(Equal("MEMBER"))
		})

		It("elects exactly one ADMIN under concurrent first registrations", func() {
			var wg sync.WaitGroup
			for i := range 8 {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					nick := "user" + string(rune('a'+i))
					register(nick+"@example.com", nick)
				}()
			}
			wg.Wait()

			var admins int
			Expect(env.pool.QueryRow(env.ctx,
				`SELECT count(*) FROM identities WHERE role = 'ADMIN'`).Scan(&admins)).To(Succeed())
			Expect(admins).To(Equal(1))
		})

		It("rejects a duplicate email regardless of case", func() {
			register("dup@example.com", "dup")
			resp := call(http.MethodPost, "/api/auth/register", "", map[string]string{
				"email": "DUP@example.com", "firstName": "Du", "lastName": "Pe",
				"nickName": "dup2", "password": "secret123",
			})
			Expect(resp.status).To(Equal(http.StatusConflict))
			Expect(resp.body["error"]).To(Equal("Email already in use"))
		})
	})

	Describe("login and logout", func() {
		It("revokes the token on logout", func() {
			register("admin@example.com", "admin")
			login := call(http.MethodPost, "/api/auth/login", "",
				map[string]string{"identifier": "admin", "password": "secret123"})
			Expect(login.status).To(Equal(http.StatusOK))
			token := login.body["token"].(string)

			Expect(call(http.MethodGet, "/api/users", token, nil).status).To(Equal(http.StatusOK))
			Expect(call(http.MethodPost, "/api/auth/logout", "",
				map[string]string{"refreshToken": token}).status).To(Equal(http.StatusOK))
			Expect(call(http.MethodGet, "/api/users", token, nil).status).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("password reset", func() {
		It("accepts a reset token exactly once", func() {
			register("reset@example.com", "resetter")
			Expect(call(http.MethodPost, "/api/auth/forgot-password", "",
				map[string]string{"email": "reset@example.com"}).status).To(Equal(http.StatusOK))
			env.resets.Wait()
			link, ok := env.notifier.Last()
			Expect(ok).To(BeTrue())

			payload := map[string]string{"token": link.Token, "newPassword": "another-secret"}
			Expect(call(http.MethodPost, "/api/auth/reset-password", "", payload).status).To(Equal(http.StatusOK))
			Expect(call(http.MethodPost, "/api/auth/reset-password", "", payload).status).To(Equal(http.StatusUnauthorized))

			Expect(call(http.MethodPost, "/api/auth/login", "",
				map[string]string{"identifier": "reset@example.com", "password": "another-secret"}).status).
				To(Equal(http.StatusOK))
		})
	})

	Describe("comments and likes", func() {
		var admin, alice, bob account
		var mediaID string

		BeforeEach(func() {
			admin = register("admin@example.com", "admin")
			alice = register("alice@example.com", "alice")
			bob = register("bob@example.com", "bob")
			mediaID = seedMedia(alice.id, "Sunset")
		})

		It("enforces ownership on edit and lets ADMIN delete", func() {
			created := call(http.MethodPost, "/api/media/"+mediaID+"/comments", alice.token,
				map[string]string{"content": "lovely"})
			Expect(created.status).To(Equal(http.StatusCreated))
			path := "/api/comments/" + created.body["id"].(string)

			Expect(call(http.MethodPut, path, bob.token, map[string]string{"content": "mine now"}).status).
				To(Equal(http.StatusForbidden))
			Expect(call(http.MethodDelete, path, bob.token, nil).status).To(Equal(http.StatusForbidden))

			listed := call(http.MethodGet, "/api/comments/user/alice", "", nil)
			Expect(listed.status).To(Equal(http.StatusOK))
			Expect(listed.list).To(HaveLen(1))

			Expect(call(http.MethodDelete, path, admin.token, nil).status).To(Equal(http.StatusOK))
			Expect(call(http.MethodGet, "/api/comments/user/alice", "", nil).list).To(BeEmpty())
		})

		It("keeps at most one like per user under concurrent toggles", func() {
			created := call(http.MethodPost, "/api/media/"+mediaID+"/comments", alice.token,
				map[string]string{"content": "like me"})
			Expect(created.status).To(Equal(http.StatusCreated))
			likes := "/api/comments/" + created.body["id"].(string) + "/likes"

			var wg sync.WaitGroup
			for range 6 {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(call(http.MethodPost, likes, bob.token, nil).status).To(Equal(http.StatusOK))
				}()
			}
			wg.Wait()

			listed := call(http.MethodGet, likes, "", nil)
			Expect(listed.status).To(Equal(http.StatusOK))
			Expect(listed.body["likes"]).To(BeNumerically("<=", 1))
		})
	})
})
