/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package extension

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/projectbeskar/smctl/api/compute"
)

func TestExtension(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Extension Suite")
}

var _ = Describe("Role", func() {
	It("treats a blank name as the wildcard", func() {
		Expect(NewRole("").Default()).To(BeTrue())
		Expect(NewRole("   ")).To(Equal(WildcardRole()))
		Expect(WildcardRole().String()).To(Equal("AllRoles"))
	})

	It("keeps the name of a named role", func() {
		role := NewRole("WebRole1")
		Expect(role.Default()).To(BeFalse())
		Expect(role.RoleType).To(Equal(NamedRoles))
		Expect(role.String()).To(Equal("WebRole1"))
	})
})

var _ = Describe("ConfigurationBuilder", func() {
	var cfg *compute.ExtensionConfiguration

	BeforeEach(func() {
		cfg = &compute.ExtensionConfiguration{
			AllRoles: []compute.ExtensionReference{{ID: "rdp-all"}},
			NamedRoles: []compute.NamedRole{
				{RoleName: "WebRole1", Extensions: []compute.ExtensionReference{{ID: "rdp-web"}}},
			},
		}
	})

	It("answers existence per role", func() {
		b := NewConfigurationBuilder(cfg)
		Expect(b.Exist(WildcardRole(), "rdp-all")).To(BeTrue())
		Expect(b.Exist(NewRole("WebRole1"), "rdp-web")).To(BeTrue())
		Expect(b.Exist(NewRole("WebRole1"), "rdp-all")).To(BeFalse())
		Expect(b.Exist(WildcardRole(), "rdp-web")).To(BeFalse())
		Expect(b.Exist(NewRole("webrole1"), "rdp-web")).To(BeFalse())
	})

	It("never matches an empty id", func() {
		b := NewConfigurationBuilder(cfg).Add(NewRole("WebRole1"), "")
		Expect(b.Exist(NewRole("WebRole1"), "")).To(BeFalse())
	})

	It("treats a nil configuration as empty", func() {
		b := NewConfigurationBuilder(nil)
		Expect(b.Exist(WildcardRole(), "rdp-all")).To(BeFalse())
		Expect(b.ExtensionConfiguration().AllRoles).To(BeEmpty())
	})

	It("round-trips through Add and Remove", func() {
		b := NewConfigurationBuilder(cfg).
			Add(NewRole("WorkerRole1"), "diag").
			Add(NewRole("WorkerRole1"), "diag").
			Remove(NewRole("WebRole1"), "rdp-web")

		out := b.ExtensionConfiguration()
		Expect(out.AllRoles).To(Equal([]compute.ExtensionReference{{ID: "rdp-all"}}))
		Expect(out.NamedRoles).To(Equal([]compute.NamedRole{
			{RoleName: "WorkerRole1", Extensions: []compute.ExtensionReference{{ID: "diag"}}},
		}))
	})
})

var _ = Describe("Resolve", func() {
	var (
		e1 = compute.Extension{ID: "E1", ProviderNamespace: "X", Type: "Y"}
		e2 = compute.Extension{ID: "E2", ProviderNamespace: "Z", Type: "W"}
	)

	It("returns exactly the enabled pairs in role order with the wildcard last", func() {
		checker := NewConfigurationBuilder(nil).
			Add(NewRole("A"), "E1").
			Add(WildcardRole(), "E1")

		matches := Resolve([]string{"A", "B"}, []compute.Extension{e1, e2}, checker, "X", "Y")

		Expect(matches).To(Equal([]Match{
			{Role: NewRole("A"), Extension: e1},
			{Role: WildcardRole(), Extension: e1},
		}))
	})

	It("surfaces the wildcard row when no named role references the extension", func() {
		checker := NewConfigurationBuilder(nil).Add(WildcardRole(), "E1")

		matches := Resolve([]string{"A"}, []compute.Extension{e1}, checker, "X", "Y")

		Expect(matches).To(HaveLen(1))
		Expect(matches[0].Role.Default()).To(BeTrue())
	})

	It("filters on namespace and type", func() {
		checker := NewConfigurationBuilder(nil).Add(WildcardRole(), "E2")

		Expect(Resolve(nil, []compute.Extension{e1, e2}, checker, "X", "Y")).To(BeEmpty())
		Expect(Resolve(nil, []compute.Extension{e1, e2}, checker, "Z", "W")).To(HaveLen(1))
	})

	It("returns an empty result for no extensions", func() {
		checker := NewConfigurationBuilder(nil).Add(WildcardRole(), "E1")
		matches := Resolve([]string{"A"}, nil, checker, "X", "Y")
		Expect(matches).NotTo(BeNil())
		Expect(matches).To(BeEmpty())
	})

	It("deduplicates role names and folds blanks into the wildcard", func() {
		Expect(CandidateRoles([]string{"A", "", "A", "B"})).To(Equal([]Role{
			NewRole("A"), NewRole("B"), WildcardRole(),
		}))
	})
})

var _ = Describe("PublicConfigValue", func() {
	DescribeTable("reads elements",
		func(payload, element, expected string) {
			value, err := PublicConfigValue(compute.Extension{ID: "rdp", PublicConfiguration: payload}, element)
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(expected))
		},
		Entry("xml element", "<PublicConfig><UserName>ops</UserName><Expiration>2026-01-01</Expiration></PublicConfig>", UserNameElement, "ops"),
		Entry("xml second element", "<PublicConfig><UserName>ops</UserName><Expiration>2026-01-01</Expiration></PublicConfig>", ExpirationElement, "2026-01-01"),
		Entry("xml missing element", "<PublicConfig><UserName>ops</UserName></PublicConfig>", ExpirationElement, ""),
		Entry("json key", `{"UserName":"ops","Expiration":"2026-01-01"}`, UserNameElement, "ops"),
		Entry("json non-string value", `{"Port":3389}`, "Port", "3389"),
		Entry("json missing key", `{"UserName":"ops"}`, ExpirationElement, ""),
		Entry("empty payload", "", UserNameElement, ""),
	)

	DescribeTable("rejects malformed payloads",
		func(payload string) {
			_, err := PublicConfigValue(compute.Extension{ID: "rdp", PublicConfiguration: payload}, UserNameElement)
			Expect(err).To(MatchError(ErrMalformedPublicConfig))
		},
		Entry("plain text", "not a config"),
		Entry("truncated xml", "<PublicConfig><UserName>ops"),
		Entry("broken json", `{"UserName":`),
	)
})
