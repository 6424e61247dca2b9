package adapter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/buscajob/buscajob/internal/model"
)

var brazilianCities = []string{
	"São Paulo, SP", "Rio de Janeiro, RJ", "Belo Horizonte, MG",
	"Porto Alegre, RS", "Curitiba, PR", "Salvador, BA", "Brasília, DF",
	"Fortaleza, CE", "Recife, PE", "Goiânia, GO", "Florianópolis, SC",
}

func roleOf(c model.SearchCriteria) string {
	if r := strings.TrimSpace(c.Role); r != "" {
		return r
	}
	return "Desenvolvedor"
}

func locationOr(c model.SearchCriteria, fallback string) string {
	if l := strings.TrimSpace(c.Location); l != "" {
		return l
	}
	return fallback
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "-")
}

// listing is a fixed posting template for the sites that always return the
// same pair of openings.
type listing struct {
	title, company, location, salary, description string
}

type siteMeta struct {
	name             string
	link             string
	contract, level  string
	minDays, maxDays int
}

func (g *generator) fromListings(m siteMeta, listings []listing) []model.JobPosting {
	out := make([]model.JobPosting, 0, len(listings))
	for _, l := range listings {
		out = append(out, model.JobPosting{
			Title:           l.title,
			Company:         l.company,
			Location:        l.location,
			Salary:          l.salary,
			Description:     l.description,
			PublishedAt:     g.published(m.minDays, m.maxDays, dateISO),
			SourceSite:      m.name,
			URL:             model.StringPtr(m.link),
			ContractType:    m.contract,
			ExperienceLevel: m.level,
		})
	}
	return out
}

func genIndeed(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	where := url.QueryEscape(locationOr(c, "Brasil"))
	companies := []string{"TechCorp", "InnovaSoft", "DataSolutions", "CloudTech", "DevCompany"}
	locations := []string{"São Paulo, SP", "Rio de Janeiro, RJ", "Belo Horizonte, MG", "Florianópolis, SC", "Joinville, SC", "Remoto"}

	n := g.between(3, 8)
	out := make([]model.JobPosting, 0, n)
	for i := 0; i < n; i++ {
		company := companies[i%len(companies)]
		out = append(out, model.JobPosting{
			Title:        fmt.Sprintf("%s - %s", role, company),
			Company:      company,
			Location:     locations[i%len(locations)],
			Salary:       brl(g.between(3000, 12000)),
			Description:  g.description(role, company),
			PublishedAt:  g.published(0, 7, dateBR),
			SourceSite:   "Indeed",
			URL:          model.StringPtr(fmt.Sprintf("https://br.indeed.com/jobs?q=%s&l=%s", url.QueryEscape(role+" "+company), where)),
			ContractType: "CLT",
		})
	}
	return out
}

func genCatho(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	companies := []string{"TechCorp", "InnovaSoft", "DataSolutions", "CloudTech"}
	locations := []string{"São Paulo, SP", "Rio de Janeiro, RJ", "Florianópolis, SC", "Joinville, SC", "Remoto"}

	n := g.between(3, 8)
	out := make([]model.JobPosting, 0, n)
	for i := 0; i < n; i++ {
		company := companies[i%len(companies)]
		location := locations[i%len(locations)]
		out = append(out, model.JobPosting{
			Title:        fmt.Sprintf("%s - %s", role, company),
			Company:      company,
			Location:     location,
			Salary:       brl(g.between(3000, 12000)),
			Description:  g.description(role, company),
			PublishedAt:  g.published(0, 7, dateBR),
			SourceSite:   "Catho",
			URL:          model.StringPtr(fmt.Sprintf("https://www.catho.com.br/vagas/?q=%s&where=%s", url.QueryEscape(role+" "+company), url.QueryEscape(location))),
			ContractType: "CLT",
		})
	}
	return out
}

func genVagas(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	n := g.between(2, 6)
	out := make([]model.JobPosting, 0, n)
	for i := 0; i < n; i++ {
		location := "São Paulo, SP"
		if i%2 != 0 {
			location = "Remoto"
		}
		out = append(out, model.JobPosting{
			Title:           role + " Pleno/Sênior",
			Company:         fmt.Sprintf("Empresa %d", i+1),
			Location:        location,
			Salary:          brl(g.between(4000, 15000)),
			Description:     fmt.Sprintf("Vaga para %s com foco em desenvolvimento de soluções inovadoras.", role),
			PublishedAt:     g.published(0, 5, dateBR),
			SourceSite:      "Vagas.com",
			URL:             model.StringPtr("https://www.vagas.com.br/vagas-de-" + slug(role)),
			ExperienceLevel: "Pleno",
		})
	}
	return out
}

func genLinkedIn(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	link := fmt.Sprintf("https://www.linkedin.com/jobs/search/?keywords=%s&location=%s",
		url.QueryEscape(role), url.QueryEscape("São Paulo, SP"))

	n := g.between(4, 10)
	out := make([]model.JobPosting, 0, n)
	for i := 0; i < n; i++ {
		location := "São Paulo, SP"
		if i%3 == 0 {
			location = "Híbrido"
		}
		out = append(out, model.JobPosting{
			Title:        role + " - Oportunidade Exclusiva",
			Company:      fmt.Sprintf("LinkedIn Company %d", i+1),
			Location:     location,
			Salary:       "A combinar",
			Description:  fmt.Sprintf("Excelente oportunidade para %s em empresa de tecnologia. Benefícios competitivos.", role),
			PublishedAt:  g.published(0, 3, dateBR),
			SourceSite:   "LinkedIn",
			URL:          model.StringPtr(link),
			ContractType: "CLT",
		})
	}
	return out
}

func genGlassdoor(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	where := func() string { return locationOr(c, g.pick(brazilianCities)) }
	return g.fromListings(siteMeta{
		name:     "Glassdoor",
		link:     "https://www.glassdoor.com.br/Job/jobs.htm?sc.keyword=" + url.QueryEscape(role),
		contract: "CLT",
		level:    "Pleno/Sênior",
		minDays:  1,
		maxDays:  7,
	}, []listing{
		{role + " Sênior", "Tech Company Brasil", where(), "R$ 8.000 - R$ 12.000", g.description(role, "Tech Company Brasil")},
		{role + " Pleno", "Startup Inovadora", where(), "R$ 6.000 - R$ 9.000", g.description(role, "Startup Inovadora")},
	})
}

func genInfoJobs(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	return g.fromListings(siteMeta{
		name:     "InfoJobs",
		link:     "https://www.infojobs.com.br/empregos.aspx?keyword=" + url.QueryEscape(role),
		contract: "CLT",
		level:    "Pleno",
		minDays:  1,
		maxDays:  5,
	}, []listing{
		{role + " Jr/Pleno", "Consultoria Tech", g.pick(brazilianCities), "R$ 4.500 - R$ 7.500", fmt.Sprintf("Vaga para %s com crescimento profissional.", role)},
		{role + " Sênior", "Empresa Digital", g.pick(brazilianCities), "R$ 7.000 - R$ 11.000", fmt.Sprintf("Oportunidade sênior para %s.", role)},
	})
}

func genStackOverflow(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	return g.fromListings(siteMeta{
		name:     "Stack Overflow Jobs",
		link:     fmt.Sprintf("https://stackoverflow.com/jobs?q=%s&l=%s", url.QueryEscape(role), url.QueryEscape(c.Location)),
		contract: "PJ/CLT",
		level:    "Sênior",
		minDays:  1,
		maxDays:  3,
	}, []listing{
		{"Senior " + role, "Tech Startup", "Remoto", "R$ 10.000 - R$ 15.000", fmt.Sprintf("Remote %s position with cutting-edge technologies.", role)},
		{"Lead " + role, "Global Company", "São Paulo/Remoto", "R$ 12.000 - R$ 18.000", fmt.Sprintf("Leadership role for experienced %s.", role)},
	})
}

func genGitHub(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	return g.fromListings(siteMeta{
		name:     "GitHub Jobs",
		link:     fmt.Sprintf("https://github.com/search?q=%s&type=repositories", url.QueryEscape(role)),
		contract: "PJ",
		level:    "Sênior",
		minDays:  1,
		maxDays:  4,
	}, []listing{
		{role + " - Open Source", "GitHub Partner", "Remoto Global", "USD 4.000 - USD 7.000", fmt.Sprintf("%s position focused on open source projects.", role)},
		{"DevOps " + role, "Cloud Native Startup", "Remoto", "R$ 10.000 - R$ 16.000", fmt.Sprintf("DevOps %s role with Kubernetes and Docker.", role)},
	})
}

func genTrampos(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	location := locationOr(c, "Brasil")
	return g.fromListings(siteMeta{
		name:     "Trampos.co",
		link:     fmt.Sprintf("https://trampos.co/oportunidades?q=%s&l=%s", url.QueryEscape(role), url.QueryEscape(location)),
		contract: "CLT",
		level:    "Pleno",
		minDays:  1,
		maxDays:  6,
	}, []listing{
		{role + " Mobile", "App Studio", location, "R$ 6.500 - R$ 9.500", fmt.Sprintf("%s Mobile com React Native e Flutter.", role)},
		{role + " Web", "Web Agency", location, "R$ 5.000 - R$ 8.000", fmt.Sprintf("%s Web com foco em e-commerce.", role)},
	})
}

func genRocket(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	return g.fromListings(siteMeta{
		name:     "Rocket Jobs",
		link:     "https://rocketjobs.com.br/vagas?q=" + url.QueryEscape(role),
		contract: "CLT/PJ",
		level:    "Sênior/Lead",
		minDays:  1,
		maxDays:  2,
	}, []listing{
		{role + " Rocket", "Rocket Company", "São Paulo/Remoto", "R$ 8.500 - R$ 13.000", fmt.Sprintf("%s position in fast-growing rocket company.", role)},
		{"Lead " + role, "Scale-up Tech", "Remoto", "R$ 12.000 - R$ 18.000", fmt.Sprintf("Tech Lead %s role with team management.", role)},
	})
}

func genStartup(g *generator, c model.SearchCriteria) []model.JobPosting {
	role := roleOf(c)
	return g.fromListings(siteMeta{
		name:     "Startup Jobs",
		link:     "https://startupjobs.com/jobs?keywords=" + url.QueryEscape(role),
		contract: "PJ/CLT",
		level:    "Sênior/Founding",
		minDays:  1,
		maxDays:  3,
	}, []listing{
		{role + " Startup", "Early Stage Startup", "Remoto", "R$ 7.000 - R$ 11.000 + Equity", fmt.Sprintf("%s role in early-stage startup with equity.", role)},
		{"Founding " + role, "New Venture", "São Paulo/Remoto", "R$ 9.000 - R$ 14.000 + Equity", fmt.Sprintf("Founding %s position with significant equity.", role)},
	})
}
