package main

import (
	"context"
	"log"
	"os"

	"bizops-assistant-be/internal/entity"
	"bizops-assistant-be/internal/model"
	"bizops-assistant-be/internal/repository/specification"
	"bizops-assistant-be/internal/repository/unitofwork"
	"bizops-assistant-be/internal/service"
	"bizops-assistant-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding Feature Catalog...")
	features := seedFeatures(db)

	color.Cyan("Seeding Subscription Plans...")
	seedPlans(db, features)

	color.Cyan("Seeding Demo Tenant...")
	seedDemoTenant(db)

	color.Green("✅ Seeding completed!")
}

// seedDemoTenant provisions a tenant on the free trial so a fresh
// environment is usable straight away.
func seedDemoTenant(db *gorm.DB) {
	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(db)
	uow := factory.NewUnitOfWork(ctx)

	tenant, err := uow.TenantRepository().FindOne(ctx, specification.BySubdomain{Subdomain: "demo"})
	if err != nil {
		color.Red("Error looking up demo tenant: %v", err)
		return
	}
	if tenant == nil {
		tenant = &entity.Tenant{
			Id:        uuid.New(),
			Name:      "Demo Company",
			Subdomain: "demo",
			IsActive:  true,
		}
		if err := uow.TenantRepository().Create(ctx, tenant); err != nil {
			color.Red("Error creating demo tenant: %v", err)
			return
		}
		color.Green("Created tenant: %s (%s)", tenant.Name, tenant.Subdomain)
	} else {
		color.Yellow("Tenant '%s' already exists, skipping...", tenant.Subdomain)
	}

	planService := service.NewPlanService(factory)
	subscriptionService := service.NewSubscriptionService(factory, planService)
	sub, err := subscriptionService.CreateFreeTrial(ctx, tenant.Id)
	if err != nil {
		color.Red("Error starting free trial for demo tenant: %v", err)
		return
	}
	if sub.TrialEnd != nil {
		color.Green("Demo tenant subscribed: %s until %s", sub.Status, sub.TrialEnd.Format("2006-01-02"))
	} else {
		color.Green("Demo tenant subscribed: %s", sub.Status)
	}
}

func seedFeatures(db *gorm.DB) map[string]*model.Feature {
	catalog := []model.Feature{
		{Key: "chat", Name: "Assistant Chat", Description: "Converse with the business assistant in ordered sessions", Category: "ai", IsActive: true, SortOrder: 1},
		{Key: "document_upload", Name: "Document Upload", Description: "Upload business documents for async extraction and analysis", Category: "documents", IsActive: true, SortOrder: 2},
		{Key: "advanced_reporting", Name: "Advanced Reporting", Description: "Detailed usage and operational reports", Category: "reporting", IsActive: true, SortOrder: 3},
		{Key: "api_access", Name: "API Access", Description: "Programmatic access to the assistant engine", Category: "reporting", IsActive: true, SortOrder: 4},
		{Key: "priority_support", Name: "Priority Support", Description: "Faster response times from our support team", Category: "support", IsActive: true, SortOrder: 5},
		{Key: "custom_branding", Name: "Custom Branding", Description: "White-label the assistant surface", Category: "support", IsActive: true, SortOrder: 6},
	}

	byKey := make(map[string]*model.Feature, len(catalog))
	for i := range catalog {
		f := &catalog[i]

		var existing model.Feature
		if err := db.Where("key = ?", f.Key).First(&existing).Error; err == nil {
			color.Yellow("Feature '%s' already exists, skipping...", f.Key)
			byKey[f.Key] = &existing
			continue
		}

		f.Id = uuid.New()
		if err := db.Create(f).Error; err != nil {
			color.Red("Error creating feature '%s': %v", f.Key, err)
			continue
		}
		color.Green("Created feature: %s (%s)", f.Name, f.Key)
		byKey[f.Key] = f
	}
	return byKey
}

type planSeed struct {
	plan     model.SubscriptionPlan
	features []string
}

func seedPlans(db *gorm.DB, features map[string]*model.Feature) {
	seeds := []planSeed{
		{
			plan: model.SubscriptionPlan{
				Name: "Free Trial", Tier: "free",
				Description:  "Evaluate the assistant with trial limits",
				MonthlyPrice: 0,
				MaxUsers:     2, MaxSuppliers: 5, MaxCustomers: 10,
				MaxOrdersPerPeriod: 50, MaxDocumentsPerPeriod: 10, MaxMessagesPerPeriod: 100,
				IsActive: true, SortOrder: 1,
			},
			features: []string{"chat", "document_upload"},
		},
		{
			plan: model.SubscriptionPlan{
				Name: "Basic", Tier: "basic",
				Description:  "For small teams getting started",
				MonthlyPrice: 29,
				MaxUsers:     5, MaxSuppliers: 25, MaxCustomers: 100,
				MaxOrdersPerPeriod: 500, MaxDocumentsPerPeriod: 50, MaxMessagesPerPeriod: 1000,
				IsActive: true, SortOrder: 2,
			},
			features: []string{"chat", "document_upload"},
		},
		{
			plan: model.SubscriptionPlan{
				Name: "Professional", Tier: "professional",
				Description:  "For growing businesses with heavier workloads",
				MonthlyPrice: 99,
				MaxUsers:     25, MaxSuppliers: 200, MaxCustomers: 1000,
				MaxOrdersPerPeriod: 5000, MaxDocumentsPerPeriod: 500, MaxMessagesPerPeriod: 10000,
				IsActive: true, SortOrder: 3,
			},
			features: []string{"chat", "document_upload", "advanced_reporting", "api_access", "priority_support"},
		},
		{
			plan: model.SubscriptionPlan{
				Name: "Enterprise", Tier: "enterprise",
				Description:  "Unlimited usage with white-glove support",
				MonthlyPrice: 299,
				// 0 means unlimited on every metric.
				IsActive: true, SortOrder: 4,
			},
			features: []string{"chat", "document_upload", "advanced_reporting", "api_access", "priority_support", "custom_branding"},
		},
	}

	for _, seed := range seeds {
		var existing model.SubscriptionPlan
		if err := db.Where("name = ?", seed.plan.Name).First(&existing).Error; err == nil {
			color.Yellow("Plan '%s' already exists, skipping...", seed.plan.Name)
			continue
		}

		p := seed.plan
		p.Id = uuid.New()
		if err := db.Omit("Features").Create(&p).Error; err != nil {
			color.Red("Error creating plan '%s': %v", p.Name, err)
			continue
		}

		for _, key := range seed.features {
			f, ok := features[key]
			if !ok {
				color.Red("Plan '%s' references unknown feature '%s'", p.Name, key)
				continue
			}
			link := model.SubscriptionPlanFeature{PlanId: p.Id, FeatureId: f.Id}
			if err := db.Create(&link).Error; err != nil {
				color.Red("Error linking feature '%s' to plan '%s': %v", key, p.Name, err)
			}
		}

		color.Green("Created plan: %s (%s, $%.0f/mo)", p.Name, p.Tier, p.MonthlyPrice)
	}
}
