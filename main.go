package main

import (
	"fmt"

	orchestratorx "github.com/renzovallejo/lima-property-agent/agent/agents/orchestrator"
	cachex "github.com/renzovallejo/lima-property-agent/agent/cache"
	conversationx "github.com/renzovallejo/lima-property-agent/agent/conversation"
	llmx "github.com/renzovallejo/lima-property-agent/agent/llm"
	promptx "github.com/renzovallejo/lima-property-agent/agent/prompt"
	retrievalx "github.com/renzovallejo/lima-property-agent/agent/retrieval"
	routerx "github.com/renzovallejo/lima-property-agent/agent/router"
	schedulex "github.com/renzovallejo/lima-property-agent/agent/schedule"
	storex "github.com/renzovallejo/lima-property-agent/agent/store"
	configx "github.com/renzovallejo/lima-property-agent/pkg/config"
	_ "github.com/renzovallejo/lima-property-agent/pkg/logger/autoload"
	openaix "github.com/renzovallejo/lima-property-agent/pkg/openai"
)

func main() {
	openaiCfg := configx.MustNew[openaix.Config]("OPENAI")
	openaiClient := openaix.NewClient(*openaiCfg)
	if openaiClient == nil {
		panic("failed to initialize openai client")
	}

	prompts := promptx.LoadPromptSet()

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	gateway := llmx.NewGateway(openaiClient, *llmCfg, prompts.Classifier)

	redisCfg := configx.MustNew[cachex.Config]("REDIS")
	redisCache := cachex.New(*redisCfg)
	defer func() { _ = redisCache.Close() }()

	dbCfg := configx.MustNew[storex.Config]("")
	db := storex.NewDB(*dbCfg)
	defer func() { _ = db.Close() }()

	catalog := storex.NewCatalog(db)
	appointments := storex.NewAppointments(db)

	manager := conversationx.NewManager(redisCache, *configx.MustNew[conversationx.Config]("CONVERSATION"))
	engine := retrievalx.NewEngine(gateway, catalog, redisCache, *configx.MustNew[retrievalx.Config]("SEARCH"))
	drafts := schedulex.NewDraftStore(redisCache, *configx.MustNew[schedulex.StoreConfig]("DRAFT"))
	machine := schedulex.NewMachine(drafts, appointments, catalog)
	router := routerx.New(gateway, *configx.MustNew[routerx.Config]("ROUTER"))

	orchestrator, err := orchestratorx.New(manager, router, engine, machine, gateway, prompts)
	if err != nil {
		panic(fmt.Sprintf("failed to build orchestrator: %v", err))
	}
	_ = orchestrator

	fmt.Println("Config and clients loaded")
}
